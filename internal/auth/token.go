package auth

import (
	"crypto/rand"   // Per-token secret generation
	"encoding/hex"  // Secret encoding
	"time"          // Token expiry

	"mattress_money/internal/domain" // Entity records

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/sirupsen/logrus"   // Logging library
)

// TokenTTL is how long an issued session token stays valid
const TokenTTL = 7 * 24 * time.Hour

// secretLength is the size in bytes of each token's random signing secret
const secretLength = 64

// Claims carried by a session token
type Claims struct {
	Username             string `json:"username"` // Identity the token asserts
	IP                   string `json:"ip"`       // Originating IP at issuance
	jwt.RegisteredClaims        // Standard JWT claims
}

// IssueToken generates a new session token for a user. Every login gets a
// fresh random secret, so tokens are not globally signed with one server
// key and compromising one token's secret exposes nothing else.
func (s *Service) IssueToken(username, ip string) (*domain.LoginToken, error) {
	raw := make([]byte, secretLength)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	secret := hex.EncodeToString(raw)

	now := time.Now().UTC()
	expiresAt := now.Add(TokenTTL)
	claims := Claims{
		Username: username,
		IP:       ip,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	token := &domain.LoginToken{
		Username:  username,
		Secret:    secret,
		Token:     signed,
		IP:        ip,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Create(token); err != nil {
		return nil, err
	}

	// MongoDB expired tokens through a TTL index; here stale rows are swept
	// opportunistically whenever a new token is issued.
	if err := s.tokens.PurgeExpired(); err != nil {
		logrus.WithField("error", err.Error()).Warn("Failed to purge expired login tokens")
	}

	logrus.WithFields(logrus.Fields{
		"username":   username,
		"ip":         ip,
		"expires_at": expiresAt.Format(time.RFC3339),
	}).Info("Issued login token")
	return token, nil
}
