package services

import (
	"crypto/rand"
	"math/big"

	"grubio/internal/domain"
)

// DefaultJoinCodeAttempts bounds how many codes CreateEvent draws before giving up.
const DefaultJoinCodeAttempts = 10

var joinCodeAlphabet = []rune(domain.JoinCodeAlphabet)

// generateJoinCode draws domain.JoinCodeLength independent uniform symbols from the join code alphabet.
func generateJoinCode() (string, error) {
	b := make([]rune, domain.JoinCodeLength)
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}
