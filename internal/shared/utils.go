// Package shared provides small helpers for random identifiers.
package shared

import (
	"crypto/rand"
	"math/big"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// MakeRandBase36String returns n characters drawn uniformly from [0-9a-z]
// using crypto/rand.
//
// It returns an error if the random number generator fails.
func MakeRandBase36String(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	max := big.NewInt(int64(len(base36Alphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = base36Alphabet[v.Int64()]
	}

	return string(b), nil
}
