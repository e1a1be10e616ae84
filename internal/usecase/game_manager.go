package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/entity"
	"github.com/rocketscienceinc/hasami-backend/internal/game"
)

type gameRepo interface {
	Save(ctx context.Context, name string, g *game.Game) error
	Load(ctx context.Context, name string) (*game.Game, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// Snapshot - read-only view of a game for transports.
type Snapshot struct {
	ID            string       `json:"id"`
	Board         string       `json:"board"`
	CurrentPlayer entity.Color `json:"currentPlayer"`
	BlackCaptured int          `json:"blackCaptured"`
	WhiteCaptured int          `json:"whiteCaptured"`
	GameOver      bool         `json:"gameOver"`
	Winner        entity.Color `json:"winner"`
	Moves         int          `json:"moves"`
}

// session - one handle. mu serializes everything done to the game.
type session struct {
	mu   sync.Mutex
	game *game.Game
}

// GameManager - registry of independent games addressed by handle ids.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo: gameRepo,
		sessions: make(map[string]*session),
	}
}

// CreateGame - registers a fresh game and returns its handle.
func (that *GameManager) CreateGame(ctx context.Context) string {
	id := uuid.NewString()

	that.mu.Lock()
	that.sessions[id] = &session{game: game.New()}
	that.mu.Unlock()

	that.logger.With("method", "CreateGame").InfoContext(ctx, "game created", "id", id)

	return id
}

// DeleteGame - drops the handle. Saves are not touched.
func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	that.mu.Lock()
	_, ok := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	that.logger.With("method", "DeleteGame").InfoContext(ctx, "game deleted", "id", id)

	return nil
}

// MakeMove - returns the captured positions. Rule violations come back as apperror kinds.
func (that *GameManager) MakeMove(ctx context.Context, id string, from, to entity.Position) ([]entity.Position, error) {
	log := that.logger.With("method", "MakeMove", "id", id)

	var captured []entity.Position

	err := that.withGame(id, func(g *game.Game) error {
		var err error

		captured, err = g.MakeMove(from, to)

		return err
	})
	if err != nil {
		log.DebugContext(ctx, "move rejected", "from", from.String(), "to", to.String(), "error", err)
		return nil, err
	}

	log.DebugContext(ctx, "move made", "from", from.String(), "to", to.String(), "captured", len(captured))

	return captured, nil
}

func (that *GameManager) BoardState(_ context.Context, id string) (string, error) {
	var state string

	err := that.withGame(id, func(g *game.Game) error {
		state = g.BoardState()
		return nil
	})

	return state, err
}

// CurrentPlayer - the color on turn; its integer value is the host encoding (1 black, 2 white).
func (that *GameManager) CurrentPlayer(_ context.Context, id string) (entity.Color, error) {
	player := entity.None

	err := that.withGame(id, func(g *game.Game) error {
		player = g.CurrentPlayer()
		return nil
	})

	return player, err
}

func (that *GameManager) IsGameOver(_ context.Context, id string) (bool, error) {
	var over bool

	err := that.withGame(id, func(g *game.Game) error {
		over = g.IsGameOver()
		return nil
	})

	return over, err
}

// Captures - black and white pieces removed from play.
func (that *GameManager) Captures(_ context.Context, id string) (int, int, error) {
	var black, white int

	err := that.withGame(id, func(g *game.Game) error {
		black, white = g.BlackCaptured(), g.WhiteCaptured()
		return nil
	})

	return black, white, err
}

// NewGame - resets the game behind the handle to the starting position.
func (that *GameManager) NewGame(ctx context.Context, id string) error {
	err := that.withSession(id, func(s *session) error {
		s.game = game.New()
		return nil
	})
	if err != nil {
		return err
	}

	that.logger.With("method", "NewGame").InfoContext(ctx, "game reset", "id", id)

	return nil
}

// ValidMoves - destinations as "[r,c;r,c]". Every failure, unknown handle included, is "[]".
func (that *GameManager) ValidMoves(ctx context.Context, id string, from entity.Position) string {
	var moves []entity.Position

	err := that.withGame(id, func(g *game.Game) error {
		moves = g.ValidMoves(from)
		return nil
	})
	if err != nil {
		that.logger.With("method", "ValidMoves").DebugContext(ctx, "no moves", "id", id, "error", err)
		return "[]"
	}

	return FormatMoves(moves)
}

// FormatMoves - host encoding of a destination list.
func FormatMoves(moves []entity.Position) string {
	return "[" + strings.Join(lo.Map(moves, func(pos entity.Position, _ int) string {
		return pos.String()
	}), ";") + "]"
}

func (that *GameManager) Snapshot(_ context.Context, id string) (*Snapshot, error) {
	var snapshot *Snapshot

	err := that.withGame(id, func(g *game.Game) error {
		snapshot = &Snapshot{
			ID:            id,
			Board:         g.BoardState(),
			CurrentPlayer: g.CurrentPlayer(),
			BlackCaptured: g.BlackCaptured(),
			WhiteCaptured: g.WhiteCaptured(),
			GameOver:      g.IsGameOver(),
			Winner:        g.Winner(),
			Moves:         len(g.History()),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// SaveGame - stores the game under name. The game itself is not modified.
func (that *GameManager) SaveGame(ctx context.Context, id, name string) error {
	log := that.logger.With("method", "SaveGame", "id", id, "name", name)

	err := that.withGame(id, func(g *game.Game) error {
		return that.gameRepo.Save(ctx, name, g)
	})
	if err != nil {
		log.WarnContext(ctx, "failed to save game", "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}

	log.InfoContext(ctx, "game saved")

	return nil
}

// LoadGame - replaces the game behind the handle with the save. On failure the game is kept.
func (that *GameManager) LoadGame(ctx context.Context, id, name string) error {
	log := that.logger.With("method", "LoadGame", "id", id, "name", name)

	err := that.withSession(id, func(s *session) error {
		loaded, err := that.gameRepo.Load(ctx, name)
		if err != nil {
			return err
		}

		s.game = loaded

		return nil
	})
	if err != nil {
		log.WarnContext(ctx, "failed to load game", "error", err)
		return fmt.Errorf("failed to load game: %w", err)
	}

	log.InfoContext(ctx, "game loaded")

	return nil
}

// OpenSave - registers a new handle holding the named save.
func (that *GameManager) OpenSave(ctx context.Context, name string) (string, error) {
	loaded, err := that.gameRepo.Load(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to load game: %w", err)
	}

	id := uuid.NewString()

	that.mu.Lock()
	that.sessions[id] = &session{game: loaded}
	that.mu.Unlock()

	that.logger.With("method", "OpenSave").InfoContext(ctx, "save opened", "id", id, "name", name)

	return id, nil
}

func (that *GameManager) ListSaves(ctx context.Context) ([]string, error) {
	names, err := that.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	return names, nil
}

func (that *GameManager) DeleteSave(ctx context.Context, name string) error {
	if err := that.gameRepo.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}

	that.logger.With("method", "DeleteSave").InfoContext(ctx, "save deleted", "name", name)

	return nil
}

func (that *GameManager) withSession(id string, fn func(s *session) error) error {
	that.mu.RLock()
	s, ok := that.sessions[id]
	that.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s)
}

func (that *GameManager) withGame(id string, fn func(g *game.Game) error) error {
	return that.withSession(id, func(s *session) error {
		return fn(s.game)
	})
}
