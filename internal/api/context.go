package api

import (
	"net/http" // HTTP status codes

	"mattress_money/internal/domain" // Entity records

	"github.com/gin-gonic/gin" // Gin web framework
)

// UserKey is the context key the session middleware stores the
// authenticated user under
const UserKey = "user"

// currentUser returns the authenticated user placed in the context by the
// session middleware, terminating the request when it is absent
func currentUser(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(UserKey)
	if exists {
		if user, ok := value.(*domain.User); ok {
			return user, true
		}
	}
	respond(c, http.StatusUnauthorized, CodeInvalidToken, nil)
	return nil, false
}
