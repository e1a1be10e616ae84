package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/game"
)

const saveExt = ".sav"

type fileStore struct {
	dir string
}

// NewFileStore - saves as <dir>/<name>.sav. The directory is created on first save.
func NewFileStore(dir string) GameRepository {
	return &fileStore{
		dir: dir,
	}
}

func (that *fileStore) path(name string) string {
	return filepath.Join(that.dir, name+saveExt)
}

func (that *fileStore) Save(_ context.Context, name string, g *game.Game) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := os.MkdirAll(that.dir, 0o755); err != nil {
		return fmt.Errorf("%w: can't create save directory: %w", apperror.ErrIOFailure, err)
	}

	return SaveFile(that.path(name), g)
}

func (that *fileStore) Load(_ context.Context, name string) (*game.Game, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	loaded := game.New()
	if err := LoadFile(that.path(name), loaded); err != nil {
		return nil, err
	}

	return loaded, nil
}

func (that *fileStore) Delete(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	err := os.Remove(that.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, name)
	}

	if err != nil {
		return fmt.Errorf("%w: can't delete save: %w", apperror.ErrIOFailure, err)
	}

	return nil
}

func (that *fileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(that.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: can't read save directory: %w", apperror.ErrIOFailure, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), saveExt)
		if !ok || entry.IsDir() {
			continue
		}

		names = append(names, name)
	}

	slices.Sort(names)

	return names, nil
}

// SaveFile - writes the game to path through a temp file in the same directory,
// so a failed save never truncates an existing one.
func SaveFile(path string, g *game.Game) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: can't open %s for writing: %w", apperror.ErrIOFailure, path, err)
	}

	defer func() {
		// no-op once renamed
		_ = os.Remove(tmp.Name())
	}()

	if err = g.Save(tmp); err != nil {
		_ = tmp.Close()
		return err
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: can't write %s: %w", apperror.ErrIOFailure, path, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: can't replace %s: %w", apperror.ErrIOFailure, path, err)
	}

	return nil
}

// LoadFile - reads path into g. A missing file is ErrGameNotFound; g is unchanged on any error.
func LoadFile(path string, g *game.Game) error {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, path)
	}

	if err != nil {
		return fmt.Errorf("%w: can't open %s: %w", apperror.ErrIOFailure, path, err)
	}
	defer file.Close()

	return g.Load(file)
}
