package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/game"
)

type sqliteStore struct {
	conn *sql.DB
}

// NewSQLiteStore - expects the games table created by storage.SQLiteStorage.Init.
func NewSQLiteStore(conn *sql.DB) GameRepository {
	return &sqliteStore{
		conn: conn,
	}
}

func (that *sqliteStore) Save(ctx context.Context, name string, g *game.Game) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	line, err := encode(g)
	if err != nil {
		return err
	}

	query := `INSERT INTO games (name, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`

	if _, err = that.conn.ExecContext(ctx, query, name, line, time.Now().Unix()); err != nil {
		return fmt.Errorf("%w: can't save game: %w", apperror.ErrIOFailure, err)
	}

	return nil
}

func (that *sqliteStore) Load(ctx context.Context, name string) (*game.Game, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	query := `SELECT state FROM games WHERE name = ?`

	var line string

	err := that.conn.QueryRowContext(ctx, query, name).Scan(&line)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, name)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: can't find game: %w", apperror.ErrIOFailure, err)
	}

	return decode(line)
}

func (that *sqliteStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	result, err := that.conn.ExecContext(ctx, `DELETE FROM games WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("%w: can't delete game: %w", apperror.ErrIOFailure, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: can't delete game: %w", apperror.ErrIOFailure, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, name)
	}

	return nil
}

func (that *sqliteStore) List(ctx context.Context) ([]string, error) {
	rows, err := that.conn.QueryContext(ctx, `SELECT name FROM games ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: can't list games: %w", apperror.ErrIOFailure, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: can't list games: %w", apperror.ErrIOFailure, err)
		}

		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: can't list games: %w", apperror.ErrIOFailure, err)
	}

	return names, nil
}
