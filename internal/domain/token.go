package domain

import "time"

// LoginToken Model. One row per issued session token; each token is signed
// with its own random secret so a leaked secret only exposes that session.
type LoginToken struct {
	ID        uint      `gorm:"primaryKey"`      // Primary key
	Username  string    `gorm:"index;not null"`  // Owning username
	Secret    string    `gorm:"not null"`        // Per-token signing secret (hex)
	Token     string    `gorm:"not null"`        // Signed token string handed to the client
	IP        string    // Originating IP of the request that created the token
	CreatedAt time.Time // Issuance time
	ExpiresAt time.Time `gorm:"index"` // Expiry; rows past this are ignored and purged
}
