package middleware

import (
	"net/http" // HTTP status codes

	"mattress_money/internal/api"  // Response codes, cookie names, context key
	"mattress_money/internal/auth" // Session/auth core

	"github.com/gin-gonic/gin" // Gin web framework
)

// SessionAuth validates the session cookies on every request and stores the
// resolved user in the context under api.UserKey. A store failure is
// distinguished from an unauthenticated request so the client doesn't bounce
// a healthy session to the login page over a database hiccup.
func SessionAuth(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, _ := c.Cookie(api.CookieUsername)
		token, _ := c.Cookie(api.CookieToken)
		result := authSvc.ValidateToken(username, token)
		switch result.Status {
		case auth.StatusValid:
			c.Set(api.UserKey, result.User) // Authenticated; continue
			c.Next()
		case auth.StatusDatabaseError:
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"response": api.CodeDatabaseError})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"response": api.CodeInvalidToken})
		}
	}
}
