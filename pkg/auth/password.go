package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the classic "10 rounds" work factor.
const bcryptCost = 10

// HashPassword hashes a plaintext password with a random salt.
// Two calls with the same input produce different hashes.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a stored hash.
// The comparison is constant-time with respect to the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
