package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	tempPasswordUpper  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	tempPasswordLower  = "abcdefghijkmnpqrstuvwxyz"
	tempPasswordDigits = "23456789"

	minTempPasswordLength = 8
)

// GenerateTemporaryPassword returns a fixed-length mixed-alphanumeric password
// from crypto/rand. At least one character of every class is guaranteed so the
// result survives the character-class policy rule.
func GenerateTemporaryPassword(length int) (string, error) {
	if length < minTempPasswordLength {
		return "", fmt.Errorf("temporary password length must be at least %d", minTempPasswordLength)
	}

	alphabet := tempPasswordUpper + tempPasswordLower + tempPasswordDigits

	out := make([]byte, length)
	classes := []string{tempPasswordUpper, tempPasswordLower, tempPasswordDigits}
	for i := range out {
		source := alphabet
		if i < len(classes) {
			source = classes[i]
		}
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(source))))
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
		out[i] = source[idx.Int64()]
	}

	// Shuffle so the guaranteed class characters do not sit at fixed positions.
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("shuffle temporary password: %w", err)
		}
		out[i], out[j.Int64()] = out[j.Int64()], out[i]
	}

	return string(out), nil
}
