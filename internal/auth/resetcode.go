package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var resetCodeSpace = big.NewInt(1000000)

// GenerateResetCode returns a 6-digit zero-padded one-time code, uniformly
// sampled from [000000, 999999]. The code carries no expiry or signature:
// freshness is enforced by the store that records it.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, resetCodeSpace)
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
