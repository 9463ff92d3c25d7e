package api

import (
	"net/http" // HTTP status codes

	"mattress_money/internal/engine" // Transaction engine
	"mattress_money/internal/utils"  // Date parsing, cache keys

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// NewTransactionHandler validates and records a transaction, applying its
// balance and mattress adjustments
func NewTransactionHandler(engineSvc *engine.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req engine.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}

		if _, err := engineSvc.Create(user.Username, req); err != nil {
			respondError(c, err)
			return
		}

		invalidateCache(c, rdb,
			utils.TagsCacheKey(user.Username),
			utils.LocationsCacheKey(user.Username))
		respond(c, http.StatusOK, CodeOK, nil)
	}
}

// GetTransactionsHandler lists all of the signed-in user's transactions
func GetTransactionsHandler(engineSvc *engine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		transactions, err := engineSvc.List(user.Username)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, CodeOK, gin.H{"transactions": transactions})
	}
}

// Request struct for a date-bounded transaction query
type DateRangeRequest struct {
	StartDate *string `json:"startDate"` // Inclusive range start
	EndDate   *string `json:"endDate"`   // Inclusive range end
}

// GetWithinDateHandler lists transactions dated between startDate and endDate
// inclusive
func GetWithinDateHandler(engineSvc *engine.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req DateRangeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.StartDate == nil || req.EndDate == nil {
			respond(c, http.StatusBadRequest, CodeMissingData, nil)
			return
		}
		start, okStart := utils.ParseDateUTC(*req.StartDate)
		end, okEnd := utils.ParseDateUTC(*req.EndDate)
		if !okStart || !okEnd {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}

		transactions, err := engineSvc.ListWithinRange(user.Username, start, end)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, CodeOK, gin.H{"transactions": transactions})
	}
}

// Request struct for a sparse transaction edit
type EditTransactionRequest struct {
	ID               uint `json:"_id"` // Transaction id
	engine.EditInput      // Fields to patch; absent fields keep their values
}

// EditTransactionHandler patches a transaction and adjusts balances by the
// net difference from its original values
func EditTransactionHandler(engineSvc *engine.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req EditTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}
		if req.ID == 0 {
			respond(c, http.StatusBadRequest, CodeMissingData, nil)
			return
		}

		if _, err := engineSvc.Edit(user.Username, req.ID, req.EditInput); err != nil {
			respondError(c, err)
			return
		}

		invalidateCache(c, rdb,
			utils.TagsCacheKey(user.Username),
			utils.LocationsCacheKey(user.Username))
		respond(c, http.StatusOK, CodeOK, nil)
	}
}

// Request struct for a transaction deletion
type DeleteTransactionRequest struct {
	ID uint `json:"_id"` // Transaction id
}

// DeleteTransactionHandler reverses a transaction's ledger effects and
// removes it
func DeleteTransactionHandler(engineSvc *engine.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req DeleteTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
			respond(c, http.StatusBadRequest, CodeMissingData, nil)
			return
		}

		if err := engineSvc.Delete(user.Username, req.ID); err != nil {
			respondError(c, err)
			return
		}

		invalidateCache(c, rdb,
			utils.TagsCacheKey(user.Username),
			utils.LocationsCacheKey(user.Username))
		respond(c, http.StatusOK, CodeOK, nil)
	}
}

// GetTagsHandler lists the distinct tags across the user's transactions,
// read through the per-user Redis cache
func GetTagsHandler(engineSvc *engine.Service, rdb *redis.Client) gin.HandlerFunc {
	return distinctHandler(rdb, utils.TagsCacheKey, func(username string) ([]string, error) {
		return engineSvc.DistinctTags(username)
	})
}

// GetLocationsHandler lists the distinct locations across the user's
// transactions, read through the per-user Redis cache
func GetLocationsHandler(engineSvc *engine.Service, rdb *redis.Client) gin.HandlerFunc {
	return distinctHandler(rdb, utils.LocationsCacheKey, func(username string) ([]string, error) {
		return engineSvc.DistinctLocations(username)
	})
}

// distinctHandler is the shared shape of the two distinct-value endpoints
func distinctHandler(rdb *redis.Client, cacheKey func(string) string, fetch func(string) ([]string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		key := cacheKey(user.Username)
		var cached []string
		if hitCache(c, rdb, key, &cached) {
			respond(c, http.StatusOK, CodeOK, gin.H{"result": cached})
			return
		}

		values, err := fetch(user.Username)
		if err != nil {
			respondError(c, err)
			return
		}

		fillCache(c, rdb, key, values)
		respond(c, http.StatusOK, CodeOK, gin.H{"result": values})
	}
}
