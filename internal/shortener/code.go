package shortener

import (
	"fmt"
	"strings"

	"github.com/jaevor/go-nanoid"
)

// DefaultCodeLength is the length of generated short codes.
const DefaultCodeLength = 7

const maxCodeLength = 64

// CodeGenerator generates short codes. Uniqueness is not guaranteed.
type CodeGenerator func() string

// NewCodeGenerator returns a nanoid generator over the URL-safe alphabet.
// It panics if the random source cannot be initialised.
func NewCodeGenerator(length int) CodeGenerator {
	gen, err := nanoid.Standard(length)
	if err != nil {
		panic(fmt.Sprintf("shortener: code generator: %v", err))
	}

	return gen
}

// ParseCode strips any leading path separator and checks the code is non-empty
// and drawn from the URL-safe alphabet.
func ParseCode(raw string) (Code, error) {
	code := strings.TrimPrefix(raw, "/")
	if code == "" || len(code) > maxCodeLength {
		return "", ErrInvalidCode
	}

	for _, c := range code {
		if !isCodeChar(c) {
			return "", ErrInvalidCode
		}
	}

	return Code(code), nil
}

func isCodeChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}

	return false
}
