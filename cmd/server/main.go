package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"mattress_money/internal/api"        // Custom package for API handlers
	"mattress_money/internal/auth"       // Session/auth core
	"mattress_money/internal/budget"     // Budget period resolver
	"mattress_money/internal/config"     // Custom package for configuration
	"mattress_money/internal/db"         // Database connection
	"mattress_money/internal/engine"     // Transaction engine
	"mattress_money/internal/ledger"     // Account balance ledger
	"mattress_money/internal/mattress"   // Mattress allocation ledger
	"mattress_money/internal/middleware" // Custom package for middleware
	"mattress_money/internal/store"      // Document store adapters

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	conn, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Stores and services
	users := store.NewUsers(conn)
	tokens := store.NewTokens(conn)
	accounts := store.NewAccounts(conn)
	mattresses := store.NewMattresses(conn)
	transactions := store.NewTransactions(conn)
	budgets := store.NewBudgets(conn)

	authSvc := auth.NewService(users, tokens)
	ledgerSvc := ledger.NewService(accounts)
	mattressSvc := mattress.NewService(mattresses, accounts, cfg.MattressAllowNegative)
	engineSvc := engine.NewService(ledgerSvc, mattressSvc, transactions)
	budgetSvc := budget.NewService(budgets, transactions)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes (no session required)
	r.POST("/api/user/new", api.RegisterHandler(authSvc, users))        // Registration endpoint
	r.POST("/api/user/login", api.LoginHandler(authSvc, users))         // Login endpoint
	r.GET("/api/user/validateToken", api.ValidateTokenHandler(authSvc)) // Session check endpoint

	// Everything below requires a valid session
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.SessionAuth(authSvc))

	apiGroup.POST("/accounts/new", api.NewAccountHandler(ledgerSvc, redisClient)) // Create account endpoint
	apiGroup.GET("/accounts/get", api.GetAccountsHandler(ledgerSvc, redisClient)) // List accounts endpoint

	apiGroup.POST("/mattresses/create", api.CreateMattressHandler(mattressSvc))     // Create mattress endpoint
	apiGroup.POST("/mattresses/get", api.GetMattressHandler(mattressSvc))           // Get mattress endpoint
	apiGroup.GET("/mattresses/getNames", api.GetMattressNamesHandler(mattressSvc))  // Mattress names endpoint
	apiGroup.POST("/mattresses/transfer", api.TransferMattressHandler(mattressSvc)) // Transfer endpoint
	apiGroup.POST("/mattresses/edit", api.EditMattressHandler(mattressSvc))         // Edit mattress endpoint
	apiGroup.POST("/mattresses/delete", api.DeleteMattressHandler(mattressSvc))     // Delete mattress endpoint

	apiGroup.POST("/transactions/new", api.NewTransactionHandler(engineSvc, redisClient))        // Create transaction endpoint
	apiGroup.GET("/transactions/get", api.GetTransactionsHandler(engineSvc))                     // List transactions endpoint
	apiGroup.POST("/transactions/getWithinDate", api.GetWithinDateHandler(engineSvc))            // Date range endpoint
	apiGroup.POST("/transactions/edit", api.EditTransactionHandler(engineSvc, redisClient))      // Edit transaction endpoint
	apiGroup.POST("/transactions/delete", api.DeleteTransactionHandler(engineSvc, redisClient))  // Delete transaction endpoint
	apiGroup.GET("/transactions/getTags", api.GetTagsHandler(engineSvc, redisClient))            // Distinct tags endpoint
	apiGroup.GET("/transactions/getLocations", api.GetLocationsHandler(engineSvc, redisClient))  // Distinct locations endpoint

	apiGroup.POST("/budget/new", api.NewBudgetHandler(budgetSvc))          // Create budget template endpoint
	apiGroup.POST("/budget/get", api.GetBudgetHandler(budgetSvc))          // Budget period endpoint
	apiGroup.GET("/budget/getNames", api.GetBudgetNamesHandler(budgetSvc)) // Budget names endpoint

	// Wrong-verb requests answer with the verb the action expects, checked
	// before any session validation.
	for _, path := range []string{
		"/api/user/new", "/api/user/login",
		"/api/accounts/new",
		"/api/mattresses/create", "/api/mattresses/get", "/api/mattresses/transfer",
		"/api/mattresses/edit", "/api/mattresses/delete",
		"/api/transactions/new", "/api/transactions/getWithinDate",
		"/api/transactions/edit", "/api/transactions/delete",
		"/api/budget/new", "/api/budget/get",
	} {
		r.GET(path, api.WrongMethodHandler(api.CodeBadMethodPOST))
	}
	for _, path := range []string{
		"/api/user/validateToken",
		"/api/accounts/get",
		"/api/mattresses/getNames",
		"/api/transactions/get", "/api/transactions/getTags", "/api/transactions/getLocations",
		"/api/budget/getNames",
	} {
		r.POST(path, api.WrongMethodHandler(api.CodeBadMethodGET))
	}

	// Anything else under the router is not an API command
	r.NoRoute(api.BadAPICommandHandler())

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
