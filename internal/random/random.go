package random

import (
	"crypto/rand"
	"math/big"

	"github.com/EnesGoktekin/detective-ai/internal/errors"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters generates a cryptographically random string of n ASCII letters.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(allowedLetters))))
		if err != nil {
			return "", errors.Wrap(err, "generate random letter")
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}
