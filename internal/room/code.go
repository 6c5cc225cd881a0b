package room

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// CodeLength is the number of decimal digits in a room code.
	CodeLength = 6
	// BoardSeedLimit bounds generated board seeds to [0, BoardSeedLimit).
	BoardSeedLimit = 1_000_000
)

var codeSpace = big.NewInt(1_000_000) // 10^CodeLength

// GenerateCode draws a uniformly random six digit code.
func GenerateCode() (string, error) {
	n, err := crand.Int(crand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generating room code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// ValidateCode trims a caller-supplied code and checks that it is exactly six digits.
func ValidateCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != CodeLength {
		return "", invalid("room_code", "must be %d digits", CodeLength)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return "", invalid("room_code", "must be %d digits", CodeLength)
		}
	}
	return code, nil
}

// randomSeed draws a board seed in [0, BoardSeedLimit).
func randomSeed() int64 {
	n, err := crand.Int(crand.Reader, big.NewInt(BoardSeedLimit))
	if err != nil {
		return 0
	}
	return n.Int64()
}
