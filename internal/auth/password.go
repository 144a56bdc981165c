// Package auth implements password hashing and the login/register service.
package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the hashing cost used when none is configured.
const DefaultBcryptCost = 12

// HashPassword hashes a plaintext password with bcrypt. Each call salts
// fresh, so the same plaintext never hashes to the same string twice.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
// A wrong password is a false return, never an error.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
