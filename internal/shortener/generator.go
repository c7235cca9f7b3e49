package shortener

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// Alphabet is the set of characters short codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// DefaultCodeLength gives 62^8 (about 2.2e14) possible codes.
	DefaultCodeLength = 8

	// MinCodeLength is the shortest code length accepted by NewCodeGenerator.
	MinCodeLength = 6
)

// CodeGenerator returns a fresh random candidate code on every call.
// It does not guarantee uniqueness; Service resolves collisions.
type CodeGenerator func() string

// NewCodeGenerator returns a uniformly distributed alphanumeric generator
// producing codes of the given length. The returned generator is safe for
// concurrent use.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	if length < MinCodeLength {
		return nil, fmt.Errorf("code length %d is below the minimum of %d", length, MinCodeLength)
	}

	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	return CodeGenerator(gen), nil
}
