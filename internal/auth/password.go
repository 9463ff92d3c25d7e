package auth

import "golang.org/x/crypto/bcrypt" // Password hashing

// bcryptCost is fixed at hash creation time
const bcryptCost = 10

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored hash, using
// bcrypt's own constant-time comparison
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
