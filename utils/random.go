package utils

import (
	"crypto/rand"
	"encoding/base64"
)

func GenerateRandomString(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)[:length]
}

func GeneratePassword() string {
	return GenerateRandomString(12)
}

// GenerateSecret returns a random signing secret for development setups.
func GenerateSecret() string {
	return GenerateRandomString(32)
}
