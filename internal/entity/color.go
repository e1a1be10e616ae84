package entity

import (
	"fmt"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
)

// Color - state of a single board cell. The numeric values are part of the host contract.
type Color int

const (
	None Color = iota
	Black
	White
)

const (
	TokenBlack = "B"
	TokenWhite = "W"
	TokenEmpty = "E"
)

// Opponent - returns the opposing color, None stays None.
func (that Color) Opponent() Color {
	switch that {
	case Black:
		return White
	case White:
		return Black
	default:
		return None
	}
}

// Token - one-letter wire token of the color.
func (that Color) Token() string {
	switch that {
	case Black:
		return TokenBlack
	case White:
		return TokenWhite
	default:
		return TokenEmpty
	}
}

func (that Color) String() string {
	switch that {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "none"
	}
}

// ParseToken - parses a one-letter wire token.
func ParseToken(token string) (Color, error) {
	switch token {
	case TokenBlack:
		return Black, nil
	case TokenWhite:
		return White, nil
	case TokenEmpty:
		return None, nil
	default:
		return None, fmt.Errorf("%w: unknown cell token %q", apperror.ErrMalformedData, token)
	}
}

func (that Color) MarshalText() ([]byte, error) {
	return []byte(that.Token()), nil
}

func (that *Color) UnmarshalText(text []byte) error {
	color, err := ParseToken(string(text))
	if err != nil {
		return err
	}

	*that = color

	return nil
}
