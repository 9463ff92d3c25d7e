// Package auth implements the session/authentication core: password hashing,
// signed-token issuance and the per-request token validation procedure.
package auth

import (
	"mattress_money/internal/domain" // Entity records

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/sirupsen/logrus"   // Logging library
)

// Status is the outcome of validating a session token. The numbering is part
// of the client contract and must not be reordered.
type Status int

// Token validation outcomes
const (
	StatusValid           Status = iota // Token verified and identity matches
	StatusDatabaseError                 // Store unreachable while resolving the user
	StatusNoSuchUser                    // Username cookie names no known user
	StatusBlocked                       // Signature valid but identity mismatched
	StatusNoMatchingToken               // No stored token verified the cookie
	StatusNoCookie                      // Username or token cookie absent
)

// Result is the outcome of a token validation. User is populated whenever the
// username resolved to a record, regardless of the final status.
type Result struct {
	Status Status
	User   *domain.User
}

// UserStore is the slice of the user store the auth core needs
type UserStore interface {
	ByUsername(username string) (*domain.User, error)
}

// TokenStore is the slice of the login token store the auth core needs
type TokenStore interface {
	Create(token *domain.LoginToken) error
	ActiveForUser(username string) ([]domain.LoginToken, error)
	PurgeExpired() error
}

// Service is the session/auth core
type Service struct {
	users  UserStore
	tokens TokenStore
}

// NewService creates the auth service
func NewService(users UserStore, tokens TokenStore) *Service {
	return &Service{users: users, tokens: tokens}
}

// ValidateToken re-evaluates the session state for one request from the two
// session cookie values. There is no stored session state beyond the token
// rows; every request walks the same decision procedure:
//
//	missing cookie           -> StatusNoCookie
//	user lookup failed       -> StatusDatabaseError
//	user not found           -> StatusNoSuchUser
//	a stored token verifies:
//	    identity matches     -> StatusValid
//	    identity mismatches  -> StatusBlocked (forged-cookie suspicion)
//	nothing verified         -> StatusNoMatchingToken
func (s *Service) ValidateToken(username, tokenStr string) Result {
	if username == "" || tokenStr == "" {
		return Result{Status: StatusNoCookie}
	}

	user, err := s.users.ByUsername(username)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"username": username,
			"error":    err.Error(),
		}).Error("Token validation failed resolving user")
		return Result{Status: StatusDatabaseError}
	}
	if user == nil {
		return Result{Status: StatusNoSuchUser}
	}

	// Expired rows are already excluded by the store query.
	tokens, err := s.tokens.ActiveForUser(username)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"username": username,
			"error":    err.Error(),
		}).Error("Token validation failed loading tokens")
		return Result{Status: StatusDatabaseError, User: user}
	}

	for i := range tokens {
		claims, err := verify(tokenStr, tokens[i].Secret)
		if err != nil {
			// Verification failure just means this isn't the matching
			// token; keep walking the list.
			continue
		}
		if claims.Username == username {
			return Result{Status: StatusValid, User: user}
		}
		// A token that verifies under one of this user's secrets but
		// carries a different identity is a forged cookie, not a stale
		// login.
		logrus.WithFields(logrus.Fields{
			"cookie_username": username,
			"token_username":  claims.Username,
		}).Warn("Blocked sign-in attempt: valid signature, mismatched username")
		return Result{Status: StatusBlocked, User: user}
	}

	return Result{Status: StatusNoMatchingToken, User: user}
}

// verify checks tokenStr against one stored secret and returns its claims
func verify(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Per-token secret from the store
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
