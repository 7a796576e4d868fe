package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GenerateBridgeKey returns a random key for the chat bridge. Only its
// hash is stored.
func GenerateBridgeKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating bridge key: %w", err)
	}
	return "tsb_" + hex.EncodeToString(buf), nil
}

// HashBridgeKey hashes a bridge key with bcrypt.
func HashBridgeKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing bridge key: %w", err)
	}
	return string(hash), nil
}

// CheckBridgeKey reports whether key matches hash.
func CheckBridgeKey(hash, key string) bool {
	if hash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
