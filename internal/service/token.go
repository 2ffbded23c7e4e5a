package service

import (
	"crypto/rand"
	"encoding/hex"
)

// generateToken returns a 64 character hex token for public review and
// invitation links.
func generateToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; there is no
		// reasonable fallback for a security token.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
