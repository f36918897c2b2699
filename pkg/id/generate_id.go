package id

import (
	"crypto/rand"
	"encoding/hex"
)

const Len32 = 32

// NewID32 returns exactly 32 lowercase hex characters (16 random bytes).
func NewID32() string {
	b := make([]byte, Len32/2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IsID32 reports whether s has the shape NewID32 produces.
func IsID32(s string) bool {
	if len(s) != Len32 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
