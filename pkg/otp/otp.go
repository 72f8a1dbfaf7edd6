package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const digits = 6

// Generate returns a random zero-padded 6-digit delivery code.
func Generate() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
