package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// UserKey returns the storage namespace for a user ID: the hex SHA-256 of
// the trimmed ID, so guest and account IDs never appear in object paths.
func UserKey(userID string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(userID)))
	return hex.EncodeToString(sum[:])
}
