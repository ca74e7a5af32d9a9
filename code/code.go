package code

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var letters = strings.Split("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", "")

const Length = 6

func GenerateRandom() string {
	var b strings.Builder
	b.Grow(Length)
	max := big.NewInt(int64(len(letters)))
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b.WriteString(letters[n.Int64()])
	}
	return b.String()
}

// Normalize trims and upper-cases a client supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
