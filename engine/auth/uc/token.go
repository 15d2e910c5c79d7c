package uc

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"github.com/compozy/defaultdesk/engine/auth/model"
)

const (
	tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLength  = 43
)

// dummyBcryptHash is compared against when the user is missing so both
// paths cost the same.
var dummyBcryptHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOa5hnhtNGRjukDWO2xzg3sjQTL1dDQ2u")

func newSessionToken() (string, error) {
	var b strings.Builder
	b.Grow(len(model.SessionTokenPrefix) + tokenLength)
	b.WriteString(model.SessionTokenPrefix)
	limit := big.NewInt(int64(len(tokenCharset)))
	for range tokenLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate session token: %w", err)
		}
		b.WriteByte(tokenCharset[n.Int64()])
	}
	return b.String(), nil
}

// Fingerprint is the lookup key stored for a token.
func Fingerprint(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
