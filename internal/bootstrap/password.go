package bootstrap

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GeneratedPasswordLength is the length of randomly generated passwords.
const GeneratedPasswordLength = 32

// passwordAlphabet avoids shell- and SQL-significant characters so the
// generated value survives being pasted into client invocations verbatim.
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePassword returns a cryptographically random password of
// GeneratedPasswordLength characters.
func GeneratePassword() (string, error) {
	buf := make([]byte, GeneratedPasswordLength)
	alphabetLen := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
