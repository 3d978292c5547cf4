package core

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// passwordAlphabet is deliberately human-typeable: temporary passwords are
// read out of an email and typed once.
const (
	passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	passwordLength   = 10
)

// RandomToken returns a URL-safe string with n bytes of cryptographically
// secure entropy.
func RandomToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("core.RandomToken: %v", err) // the CSPRNG is non-negotiable
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// RandomPassword returns a system-issued temporary password: fixed length,
// uppercase letters and digits only.
func RandomPassword() string {
	return RandomRef(passwordLength)
}

// RandomRef returns n random uppercase letters and digits, for human-facing
// reference numbers.
func RandomRef(n int) string {
	max := big.NewInt(int64(len(passwordAlphabet)))
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			log.Fatalf("core.RandomRef: %v", err)
		}
		sb.WriteByte(passwordAlphabet[idx.Int64()])
	}
	return sb.String()
}

// RandomAccessCode returns a short shareable access code for a pedagogical space.
func RandomAccessCode() string {
	return strings.ToUpper(RandomToken(6))
}

// RandomID returns a unique domain identifier with a readable prefix, eg. "STU-1b9d6bcd...".
func RandomID(prefix string) string {
	return strings.ToUpper(prefix) + "-" + uuid.New().String()
}
