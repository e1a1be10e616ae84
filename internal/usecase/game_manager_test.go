package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/board"
	"github.com/rocketscienceinc/hasami-backend/internal/entity"
	"github.com/rocketscienceinc/hasami-backend/internal/game"
)

var errRedisDown = errors.New("redis down")

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) Save(ctx context.Context, name string, g *game.Game) error {
	args := that.Called(ctx, name, g)
	return args.Error(0)
}

func (that *mockGameRepo) Load(ctx context.Context, name string) (*game.Game, error) {
	args := that.Called(ctx, name)

	loaded, _ := args.Get(0).(*game.Game)

	return loaded, args.Error(1)
}

func (that *mockGameRepo) Delete(ctx context.Context, name string) error {
	args := that.Called(ctx, name)
	return args.Error(0)
}

func (that *mockGameRepo) List(ctx context.Context) ([]string, error) {
	args := that.Called(ctx)

	names, _ := args.Get(0).([]string)

	return names, args.Error(1)
}

func newManager(t *testing.T) (*GameManager, *mockGameRepo) {
	t.Helper()

	repo := &mockGameRepo{}
	t.Cleanup(func() {
		repo.AssertExpectations(t)
	})

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewGameManager(logger, repo), repo
}

func pos(row, col int) entity.Position {
	return entity.Position{Row: row, Col: col}
}

func TestGameManager_CreateGame(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t)

	// When: two games are created
	first := manager.CreateGame(ctx)
	second := manager.CreateGame(ctx)

	// Then: each has its own handle and starts from the initial position
	assert.NotEqual(t, first, second)

	state, err := manager.BoardState(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, board.New().Serialize(), state)

	player, err := manager.CurrentPlayer(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 1, int(player))
}

func TestGameManager_GamesAreIndependent(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t)

	first := manager.CreateGame(ctx)
	second := manager.CreateGame(ctx)

	// When: a move is made in the first game
	_, err := manager.MakeMove(ctx, first, pos(0, 0), pos(4, 0))
	require.NoError(t, err)

	// Then: the second game does not see it
	player, err := manager.CurrentPlayer(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, entity.Black, player)

	state, err := manager.BoardState(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, board.New().Serialize(), state)
}

func TestGameManager_DeleteGame(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t)
	id := manager.CreateGame(ctx)

	t.Run("Deletes existing game", func(t *testing.T) {
		require.NoError(t, manager.DeleteGame(ctx, id))

		_, err := manager.BoardState(ctx, id)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Unknown handle", func(t *testing.T) {
		require.ErrorIs(t, manager.DeleteGame(ctx, id), apperror.ErrGameNotFound)
	})
}

func TestGameManager_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Legal move passes the turn", func(t *testing.T) {
		manager, _ := newManager(t)
		id := manager.CreateGame(ctx)

		captured, err := manager.MakeMove(ctx, id, pos(0, 4), pos(4, 4))

		require.NoError(t, err)
		assert.Empty(t, captured)

		player, err := manager.CurrentPlayer(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, int(player))
	})

	t.Run("Wrong turn keeps the error kind", func(t *testing.T) {
		manager, _ := newManager(t)
		id := manager.CreateGame(ctx)

		_, err := manager.MakeMove(ctx, id, pos(8, 4), pos(4, 4))

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Unknown handle", func(t *testing.T) {
		manager, _ := newManager(t)

		_, err := manager.MakeMove(ctx, "nope", pos(0, 4), pos(4, 4))

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_ValidMoves(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t)
	id := manager.CreateGame(ctx)

	t.Run("Piece on turn", func(t *testing.T) {
		assert.Equal(t, "[1,0;2,0;3,0;4,0;5,0;6,0;7,0]", manager.ValidMoves(ctx, id, pos(0, 0)))
	})

	t.Run("Opponent piece", func(t *testing.T) {
		assert.Equal(t, "[]", manager.ValidMoves(ctx, id, pos(8, 0)))
	})

	t.Run("Off the board", func(t *testing.T) {
		assert.Equal(t, "[]", manager.ValidMoves(ctx, id, pos(42, -1)))
	})

	t.Run("Unknown handle", func(t *testing.T) {
		assert.Equal(t, "[]", manager.ValidMoves(ctx, "nope", pos(0, 0)))
	})
}

func TestFormatMoves(t *testing.T) {
	assert.Equal(t, "[]", FormatMoves(nil))
	assert.Equal(t, "[0,1]", FormatMoves([]entity.Position{pos(0, 1)}))
	assert.Equal(t, "[0,1;0,2;2,0]", FormatMoves([]entity.Position{pos(0, 1), pos(0, 2), pos(2, 0)}))
}

func TestGameManager_NewGame(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t)
	id := manager.CreateGame(ctx)

	_, err := manager.MakeMove(ctx, id, pos(0, 4), pos(4, 4))
	require.NoError(t, err)

	// When: the game is reset
	require.NoError(t, manager.NewGame(ctx, id))

	// Then: it is back at the start
	snapshot, err := manager.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, board.New().Serialize(), snapshot.Board)
	assert.Equal(t, entity.Black, snapshot.CurrentPlayer)
	assert.Zero(t, snapshot.Moves)

	require.ErrorIs(t, manager.NewGame(ctx, "nope"), apperror.ErrGameNotFound)
}

func TestGameManager_Snapshot(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t)
	id := manager.CreateGame(ctx)

	_, err := manager.MakeMove(ctx, id, pos(0, 4), pos(4, 4))
	require.NoError(t, err)

	snapshot, err := manager.Snapshot(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, id, snapshot.ID)
	assert.Equal(t, entity.White, snapshot.CurrentPlayer)
	assert.Equal(t, 1, snapshot.Moves)
	assert.False(t, snapshot.GameOver)
	assert.Equal(t, entity.None, snapshot.Winner)

	over, err := manager.IsGameOver(ctx, id)
	require.NoError(t, err)
	assert.False(t, over)

	black, white, err := manager.Captures(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, black)
	assert.Zero(t, white)
}

func TestGameManager_SaveGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves through the repository", func(t *testing.T) {
		// Given: a game and a repository that accepts the save
		manager, repo := newManager(t)
		id := manager.CreateGame(ctx)

		repo.On("Save", mock.Anything, "slot", mock.AnythingOfType("*game.Game")).
			Return(nil).
			Once()

		// When: the game is saved
		err := manager.SaveGame(ctx, id, "slot")

		// Then: no error
		require.NoError(t, err)
	})

	t.Run("Repository failure is reported", func(t *testing.T) {
		manager, repo := newManager(t)
		id := manager.CreateGame(ctx)

		repo.On("Save", mock.Anything, "slot", mock.Anything).
			Return(errRedisDown).
			Once()

		err := manager.SaveGame(ctx, id, "slot")

		require.ErrorIs(t, err, errRedisDown)
	})

	t.Run("Unknown handle never reaches the repository", func(t *testing.T) {
		manager, _ := newManager(t)

		err := manager.SaveGame(ctx, "nope", "slot")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_LoadGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces the game", func(t *testing.T) {
		// Given: a saved game with white on turn
		manager, repo := newManager(t)
		id := manager.CreateGame(ctx)

		saved := game.New()
		_, err := saved.MakeMove(pos(0, 4), pos(4, 4))
		require.NoError(t, err)

		repo.On("Load", mock.Anything, "slot").
			Return(saved, nil).
			Once()

		// When: it is loaded into the handle
		require.NoError(t, manager.LoadGame(ctx, id, "slot"))

		// Then: the handle shows the saved state
		state, err := manager.BoardState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, saved.BoardState(), state)

		player, err := manager.CurrentPlayer(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.White, player)
	})

	t.Run("Failure keeps the current game", func(t *testing.T) {
		manager, repo := newManager(t)
		id := manager.CreateGame(ctx)

		_, err := manager.MakeMove(ctx, id, pos(0, 0), pos(3, 0))
		require.NoError(t, err)

		repo.On("Load", mock.Anything, "broken").
			Return(nil, apperror.ErrMalformedData).
			Once()

		err = manager.LoadGame(ctx, id, "broken")

		require.ErrorIs(t, err, apperror.ErrMalformedData)

		snapshot, err := manager.Snapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, snapshot.Moves)
		assert.Equal(t, entity.White, snapshot.CurrentPlayer)
	})
}

func TestGameManager_OpenSave(t *testing.T) {
	ctx := context.Background()

	t.Run("Registers a handle holding the save", func(t *testing.T) {
		manager, repo := newManager(t)

		saved := game.New()
		_, err := saved.MakeMove(pos(0, 4), pos(4, 4))
		require.NoError(t, err)

		repo.On("Load", mock.Anything, "slot").Return(saved, nil).Once()

		id, err := manager.OpenSave(ctx, "slot")

		require.NoError(t, err)
		state, err := manager.BoardState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, saved.BoardState(), state)
	})

	t.Run("Missing save", func(t *testing.T) {
		manager, repo := newManager(t)

		repo.On("Load", mock.Anything, "missing").Return(nil, apperror.ErrGameNotFound).Once()

		_, err := manager.OpenSave(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}

func TestGameManager_Saves(t *testing.T) {
	ctx := context.Background()
	manager, repo := newManager(t)

	repo.On("List", mock.Anything).Return([]string{"a", "b"}, nil).Once()
	repo.On("Delete", mock.Anything, "a").Return(nil).Once()
	repo.On("Delete", mock.Anything, "zzz").Return(apperror.ErrGameNotFound).Once()

	names, err := manager.ListSaves(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, manager.DeleteSave(ctx, "a"))
	require.ErrorIs(t, manager.DeleteSave(ctx, "zzz"), apperror.ErrGameNotFound)
}

func TestGameManager_Concurrent(t *testing.T) {
	ctx := context.Background()
	manager, _ := newManager(t)

	const games = 16

	var wg sync.WaitGroup

	ids := make([]string, games)
	for i := range games {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			ids[i] = manager.CreateGame(ctx)
			_, err := manager.MakeMove(ctx, ids[i], pos(0, i%9), pos(4, i%9))
			assert.NoError(t, err)
			_ = manager.ValidMoves(ctx, ids[i], pos(8, 0))
		}(i)
	}

	wg.Wait()

	for _, id := range ids {
		player, err := manager.CurrentPlayer(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.White, player)
	}
}
