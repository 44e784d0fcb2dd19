package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashSecret creates a SHA-256 hash of a secret for storage.
// Use this to store renewal tokens or gateway keys; verify an
// incoming credential by hashing it and comparing.
func HashSecret(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}
