package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // Input normalization

	"mattress_money/internal/auth"   // Session/auth core
	"mattress_money/internal/domain" // Entity records
	"mattress_money/internal/store"  // Store sentinels

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// UserAccounts is the slice of the user store the auth handlers need
type UserAccounts interface {
	ByUsername(username string) (*domain.User, error)
	ByEmail(email string) (*domain.User, error)
	Create(user *domain.User) error
}

// Request struct for registration
type RegisterRequest struct {
	Username string `json:"username"` // Desired username
	First    string `json:"first"`    // First name
	Last     string `json:"last"`     // Last name (optional)
	Email    string `json:"email"`    // Email address
	Pass     string `json:"pass"`     // Plaintext password
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username"` // Username
	Pass     string `json:"pass"`     // Plaintext password
}

// RegisterHandler creates a new user account. Username and email are
// canonicalized to lowercase; last name is the only optional field. A
// successful registration issues a session token immediately so the client
// lands signed in.
func RegisterHandler(authSvc *auth.Service, users UserAccounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}
		username := strings.ToLower(strings.TrimSpace(req.Username))
		first := strings.TrimSpace(req.First)
		last := strings.TrimSpace(req.Last) // Not required
		email := strings.ToLower(strings.TrimSpace(req.Email))

		if username == "" || first == "" || email == "" || req.Pass == "" {
			respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
			return
		}

		hash, err := auth.HashPassword(req.Pass)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to hash password")
			respond(c, http.StatusInternalServerError, CodeDatabaseError, nil)
			return
		}

		user := &domain.User{
			Username: username,
			Hash:     hash,
			Email:    email,
			First:    first,
			Last:     last,
			Roles:    domain.Roles{},
		}
		if err := users.Create(user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				respond(c, http.StatusBadRequest, CodeItemExists, gin.H{
					"exists": duplicateFields(users, username, email),
				})
				return
			}
			respond(c, http.StatusBadGateway, CodeDatabaseError, nil)
			return
		}

		token, err := authSvc.IssueToken(username, c.ClientIP())
		if err != nil {
			respond(c, http.StatusBadGateway, CodeDatabaseError, nil)
			return
		}
		setSessionCookies(c, username, token.Token)
		respond(c, http.StatusOK, CodeAccountCreated, nil)
	}
}

// duplicateFields reports which of the unique user fields already exist, so
// the registration form can flag the offending input
func duplicateFields(users UserAccounts, username, email string) gin.H {
	exists := gin.H{"username": 0, "email": 0}
	if user, err := users.ByUsername(username); err == nil && user != nil {
		exists["username"] = 1
	}
	if user, err := users.ByEmail(email); err == nil && user != nil {
		exists["email"] = 1
	}
	return exists
}

// LoginHandler signs a user in. An already-valid session short-circuits; a
// database error is fatal; every other validation outcome falls through to an
// explicit username+password check so a stale or missing cookie never blocks
// a legitimate login.
func LoginHandler(authSvc *auth.Service, users UserAccounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, CodeMissingData, nil)
			return
		}
		username := strings.ToLower(strings.TrimSpace(req.Username))
		if username == "" || req.Pass == "" {
			respond(c, http.StatusBadRequest, CodeMissingData, nil)
			return
		}

		result := authSvc.ValidateToken(sessionCookies(c))
		user := result.User
		switch result.Status {
		case auth.StatusValid:
			respond(c, http.StatusOK, CodeAlreadyLoggedIn, nil)
			return
		case auth.StatusDatabaseError:
			respond(c, http.StatusInternalServerError, CodeDatabaseError, nil)
			return
		case auth.StatusBlocked:
			// Valid signature, wrong identity. Don't let the forged cookie
			// fall through to the password check.
			respond(c, http.StatusUnauthorized, CodeBadSignIn, nil)
			return
		case auth.StatusNoSuchUser, auth.StatusNoCookie:
			// The cookie identity is useless; resolve the posted username
			// instead. A dead cookie must not block switching logins.
			var err error
			user, err = users.ByUsername(username)
			if err != nil {
				respond(c, http.StatusBadGateway, CodeDatabaseError, nil)
				return
			}
			if user == nil {
				respond(c, http.StatusUnauthorized, CodeUserDoesNotExist, nil)
				return
			}
		}

		if !auth.VerifyPassword(req.Pass, user.Hash) {
			respond(c, http.StatusUnauthorized, CodeBadSignIn, nil)
			return
		}

		token, err := authSvc.IssueToken(user.Username, c.ClientIP())
		if err != nil {
			respond(c, http.StatusBadGateway, CodeDatabaseError, nil)
			return
		}
		setSessionCookies(c, user.Username, token.Token)
		respond(c, http.StatusOK, CodeSuccessfulLogIn, gin.H{
			"data": gin.H{"username": user.Username},
		})
	}
}

// ValidateTokenHandler reports the current session state. A valid session
// returns the public view of the user record for the client to render.
func ValidateTokenHandler(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := authSvc.ValidateToken(sessionCookies(c))
		switch result.Status {
		case auth.StatusValid:
			respond(c, http.StatusOK, CodeAlreadyLoggedIn, gin.H{"data": result.User})
		case auth.StatusDatabaseError:
			respond(c, http.StatusInternalServerError, CodeDatabaseError, nil)
		default:
			respond(c, http.StatusUnauthorized, CodeInvalidToken, nil)
		}
	}
}
