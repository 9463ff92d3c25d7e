package api

import (
	"net/http" // HTTP status codes

	"mattress_money/internal/domain" // Entity records
	"mattress_money/internal/ledger" // Account balance ledger
	"mattress_money/internal/utils"  // Redis cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Request struct for account creation
type NewAccountRequest struct {
	AccountName     string `json:"accountName"`     // Account name
	Institution     string `json:"institution"`     // Institution name
	StartingBalance string `json:"startingBalance"` // Initial balance
	Type            string `json:"type"`            // Account type enum
}

// NewAccountHandler creates a money account for the signed-in user
func NewAccountHandler(ledgerSvc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req NewAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}

		if _, err := ledgerSvc.Create(user.Username, ledger.CreateInput{
			Name:            req.AccountName,
			Institution:     req.Institution,
			StartingBalance: req.StartingBalance,
			Type:            req.Type,
		}); err != nil {
			respondError(c, err)
			return
		}

		invalidateCache(c, rdb, utils.AccountsCacheKey(user.Username))
		respond(c, http.StatusOK, CodeOK, nil)
	}
}

// GetAccountsHandler lists all of the signed-in user's accounts, read through
// the per-user Redis cache
func GetAccountsHandler(ledgerSvc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		key := utils.AccountsCacheKey(user.Username)
		var cached []domain.Account
		if hitCache(c, rdb, key, &cached) {
			respond(c, http.StatusOK, CodeOK, gin.H{"accounts": cached})
			return
		}

		accounts, err := ledgerSvc.List(user.Username)
		if err != nil {
			respondError(c, err)
			return
		}

		fillCache(c, rdb, key, accounts)
		respond(c, http.StatusOK, CodeOK, gin.H{"accounts": accounts})
	}
}

// hitCache reads a cached list into dest. A cache failure is a miss, not an
// error; the store remains the source of truth.
func hitCache(c *gin.Context, rdb *redis.Client, key string, dest any) bool {
	if rdb == nil {
		return false
	}
	found, err := utils.GetCache(c.Request.Context(), rdb, key, dest)
	if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
		return false
	}
	return found
}

// fillCache stores a list result for subsequent reads
func fillCache(c *gin.Context, rdb *redis.Client, key string, value any) {
	if rdb == nil {
		return
	}
	if err := utils.SetCache(c.Request.Context(), rdb, key, value); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
}

// invalidateCache drops cached lists made stale by a write
func invalidateCache(c *gin.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil {
		return
	}
	if err := utils.DeleteCache(c.Request.Context(), rdb, keys...); err != nil {
		logrus.WithField("error", err.Error()).Warn("Cache invalidation failed")
	}
}
