package domain

import (
	"database/sql/driver" // Valuer interface for the roles column
	"encoding/json"       // JSON encoding for the roles column
	"errors"              // Error values
)

// Roles is a set of role names stored as a JSON column
type Roles []string

// Value marshals the roles for storage
func (r Roles) Value() (driver.Value, error) {
	if r == nil {
		r = Roles{}
	}
	return json.Marshal(r)
}

// Scan unmarshals the roles from storage
func (r *Roles) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	case nil:
		*r = Roles{}
		return nil
	}
	return errors.New("unsupported roles column type")
}

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"-"`              // Primary key
	Username string `gorm:"uniqueIndex;not null" json:"username"` // Unique username, stored lowercase
	Hash     string `gorm:"not null" json:"-"`                // Hashed password
	Email    string `gorm:"uniqueIndex;not null" json:"email"` // Unique email, stored lowercase
	First    string `gorm:"not null" json:"first"`            // First name
	Last     string `json:"last"`                             // Last name (optional)
	Roles    Roles  `gorm:"type:json" json:"roles"`           // Role names
}
