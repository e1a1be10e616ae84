package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/entity"
	"github.com/rocketscienceinc/hasami-backend/internal/repository"
	"github.com/rocketscienceinc/hasami-backend/internal/usecase"
)

type fixture struct {
	commands *Commands
	out      *bytes.Buffer
	store    repository.GameRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := repository.NewFileStore(t.TempDir())
	out := &bytes.Buffer{}

	return &fixture{
		commands: New(logger, usecase.NewGameManager(logger, store), out, nil),
		out:      out,
		store:    store,
	}
}

func (that *fixture) run(t *testing.T, args ...string) error {
	t.Helper()

	that.out.Reset()

	return that.commands.Run(context.Background(), append([]string{"hasami"}, args...))
}

func TestCommands_New(t *testing.T) {
	f := newFixture(t)

	// When: a new game is started
	require.NoError(t, f.run(t, "new", "match"))

	// Then: the starting board is printed and the save exists
	output := f.out.String()
	assert.Contains(t, output, "0  B B B B B B B B B")
	assert.Contains(t, output, "8  W W W W W W W W W")
	assert.Contains(t, output, "black to move")

	names, err := f.store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"match"}, names)
}

func TestCommands_Move(t *testing.T) {
	t.Run("Legal move is saved", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.run(t, "new", "match"))

		require.NoError(t, f.run(t, "move", "match", "0", "4", "4", "4"))

		assert.Contains(t, f.out.String(), "moved 0,4 -> 4,4")
		assert.Contains(t, f.out.String(), "white to move")

		saved, err := f.store.Load(context.Background(), "match")
		require.NoError(t, err)
		assert.Equal(t, entity.White, saved.CurrentPlayer())
		assert.Equal(t, entity.Black, saved.PieceAt(entity.Position{Row: 4, Col: 4}))
	})

	t.Run("Illegal move leaves the save alone", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.run(t, "new", "match"))

		err := f.run(t, "move", "match", "8", "4", "4", "4")

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)

		saved, err := f.store.Load(context.Background(), "match")
		require.NoError(t, err)
		assert.Equal(t, entity.Black, saved.CurrentPlayer())
	})

	t.Run("Capture is reported", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.run(t, "new", "match"))

		// black 0,3 -> 4,3; white 8,4 -> 4,4; black 0,5 -> 4,5 closes the flank
		require.NoError(t, f.run(t, "move", "match", "0", "3", "4", "3"))
		require.NoError(t, f.run(t, "move", "match", "8", "4", "4", "4"))
		require.NoError(t, f.run(t, "move", "match", "0", "5", "4", "5"))

		assert.Contains(t, f.out.String(), "captured [4,4]")
		assert.Contains(t, f.out.String(), "captured: black 0, white 1")
	})

	t.Run("Bad arguments", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.run(t, "new", "match"))

		require.ErrorIs(t, f.run(t, "move", "match", "0", "4"), errUsage)
		require.ErrorIs(t, f.run(t, "move", "match", "a", "4", "4", "4"), errUsage)
		require.ErrorIs(t, f.run(t, "move"), errUsage)
	})

	t.Run("Missing save", func(t *testing.T) {
		f := newFixture(t)

		require.ErrorIs(t, f.run(t, "move", "ghost", "0", "4", "4", "4"), apperror.ErrGameNotFound)
	})
}

func TestCommands_Moves(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "new", "match"))

	require.NoError(t, f.run(t, "moves", "match", "0", "0"))
	assert.Equal(t, "[1,0;2,0;3,0;4,0;5,0;6,0;7,0]\n", f.out.String())

	require.NoError(t, f.run(t, "moves", "match", "8", "0"))
	assert.Equal(t, "[]\n", f.out.String())
}

func TestCommands_StateJSON(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "new", "match"))

	require.NoError(t, f.run(t, "state", "--json", "match"))

	var snapshot usecase.Snapshot
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &snapshot))
	assert.Equal(t, entity.Black, snapshot.CurrentPlayer)
	assert.Zero(t, snapshot.Moves)
	assert.False(t, snapshot.GameOver)
}

func TestCommands_ListDelete(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "new", "b"))
	require.NoError(t, f.run(t, "new", "a"))

	require.NoError(t, f.run(t, "list"))
	assert.Equal(t, "a\nb\n", f.out.String())

	require.NoError(t, f.run(t, "delete", "a"))
	require.NoError(t, f.run(t, "list"))
	assert.Equal(t, "b\n", f.out.String())

	require.ErrorIs(t, f.run(t, "delete", "a"), apperror.ErrGameNotFound)
}

func TestCommands_MCPNotAvailable(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.run(t, "mcp"), errUsage)
}

func TestCommands_MCP(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	served := false

	commands := New(logger, usecase.NewGameManager(logger, repository.NewFileStore(t.TempDir())), io.Discard,
		func(context.Context) error {
			served = true
			return nil
		})

	require.NoError(t, commands.Run(context.Background(), []string{"hasami", "mcp"}))
	assert.True(t, served)
}

func TestRender_GameOver(t *testing.T) {
	var out strings.Builder

	err := render(&out, &usecase.Snapshot{
		Board:         `[["E","E","E","E","E","E","E","E","E"],["E","E","E","E","E","E","E","E","E"],["E","E","E","E","E","E","E","E","E"],["E","E","E","E","E","E","E","E","E"],["E","E","E","E","B","E","E","E","E"],["E","E","E","E","E","E","E","E","E"],["E","E","E","E","E","E","E","E","E"],["E","E","E","E","E","E","E","E","E"],["E","E","E","E","E","E","E","E","E"]]`,
		WhiteCaptured: 9,
		GameOver:      true,
		Winner:        entity.Black,
	})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "4  . . . . B . . . .")
	assert.Contains(t, out.String(), "game over, black wins")
}
