package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/zarlcorp/core/pkg/zcrypto"
)

const saltBytes = 16

// Salter returns a fresh salt for one password.
type Salter func() (string, error)

// RandomSalt returns 16 crypto-random bytes, hex encoded.
func RandomSalt() (string, error) {
	b, err := zcrypto.RandBytes(saltBytes)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword returns hex(sha256(password + salt)), the salt-suffix scheme
// brokers use for hashed user imports.
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}
