package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/game"
)

// GameRepository - named saves. Every store keeps the single persistence line of the game,
// so a save can be moved between stores verbatim.
type GameRepository interface {
	Save(ctx context.Context, name string, g *game.Game) error
	Load(ctx context.Context, name string) (*game.Game, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName - save names become file names and keys, so only a safe subset is accepted.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: bad save name %q", apperror.ErrMalformedData, name)
	}

	return nil
}

func encode(g *game.Game) (string, error) {
	line, err := g.MarshalText()
	if err != nil {
		return "", fmt.Errorf("failed to encode game: %w", err)
	}

	return string(line), nil
}

func decode(line string) (*game.Game, error) {
	loaded := game.New()
	if err := loaded.UnmarshalText([]byte(line)); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}

	return loaded, nil
}
