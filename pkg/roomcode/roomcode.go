package roomcode

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultLength = 6
	// Uppercase letters and digits without the easily confused I, O, 0 and 1.
	DefaultAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Generator produces short human-shareable room codes.
type Generator struct {
	length   int
	alphabet string
}

func New(length int, alphabet string) (*Generator, error) {
	if length < 4 || length > 32 {
		return nil, fmt.Errorf("room code length must be between 4 and 32, got %d", length)
	}
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("room code alphabet must have at least 2 characters, got %d", len(alphabet))
	}

	return &Generator{
		length:   length,
		alphabet: alphabet,
	}, nil
}

func (g *Generator) Generate() (string, error) {
	code, err := gonanoid.Generate(g.alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}

	return code, nil
}

// Normalize upper-cases user input so codes typed in lower case still match.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
