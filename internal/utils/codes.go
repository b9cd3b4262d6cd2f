package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const classCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateClassCode returns a random code of length characters drawn from [A-Z0-9].
func GenerateClassCode(length int) (string, error) {
	max := big.NewInt(int64(len(classCodeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		code[i] = classCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// GenerateToken returns n random bytes hex encoded.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var documentURLPrefixes = []string{"http://", "https://", "ftp://"}

// IsDocumentURL reports whether s looks like a link to an external document.
func IsDocumentURL(s string) bool {
	for _, prefix := range documentURLPrefixes {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			return true
		}
	}
	return false
}
