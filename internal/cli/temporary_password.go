package cli

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/terraincognita07/fortuna/internal/services"
)

const (
	minTemporaryPasswordLength = 8
	temporaryPasswordAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

// generateTemporaryPassword draws from an alphabet without look-alike
// characters and retries until the result passes the password policy.
func generateTemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		length = minTemporaryPasswordLength
	}

	limit := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	for {
		var builder strings.Builder
		builder.Grow(length)
		for builder.Len() < length {
			position, err := rand.Int(rand.Reader, limit)
			if err != nil {
				return "", err
			}
			builder.WriteByte(temporaryPasswordAlphabet[position.Int64()])
		}

		password := builder.String()
		if services.ValidatePasswordStrength(password) == nil {
			return password, nil
		}
	}
}
