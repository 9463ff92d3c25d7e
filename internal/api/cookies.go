package api

import (
	"net/http" // Cookie attributes

	"mattress_money/internal/auth" // Token TTL

	"github.com/gin-gonic/gin" // Gin web framework
)

// Session cookie names
const (
	CookieToken    = "login_token"
	CookieUsername = "username"
)

// setSessionCookies attaches the two session cookies with expiry matching
// the token's TTL. SameSite=None because the client is served from a
// different origin; Secure and HttpOnly are mandatory with that.
func setSessionCookies(c *gin.Context, username, token string) {
	maxAge := int(auth.TokenTTL.Seconds())
	for _, cookie := range []*http.Cookie{
		{Name: CookieToken, Value: token},
		{Name: CookieUsername, Value: username},
	} {
		cookie.MaxAge = maxAge
		cookie.Path = "/"
		cookie.Secure = true
		cookie.HttpOnly = true
		cookie.SameSite = http.SameSiteNoneMode
		http.SetCookie(c.Writer, cookie)
	}
}

// sessionCookies reads the two session cookie values; absent cookies come
// back as empty strings, which the auth core reports as NoCookie
func sessionCookies(c *gin.Context) (username, token string) {
	username, _ = c.Cookie(CookieUsername)
	token, _ = c.Cookie(CookieToken)
	return username, token
}
