package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const accountNumberDigits = 10

// GenerateAccountNumber produces a random numeric account number of fixed
// width. The first digit is never zero so the printed length is stable.
func GenerateAccountNumber() (string, error) {
	first, err := rand.Int(rand.Reader, big.NewInt(9))
	if err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	out := make([]byte, 0, accountNumberDigits)
	out = append(out, byte('1'+first.Int64()))
	for i := 1; i < accountNumberDigits; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		out = append(out, byte('0'+d.Int64()))
	}
	return string(out), nil
}
