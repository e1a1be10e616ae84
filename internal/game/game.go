package game

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/board"
	"github.com/rocketscienceinc/hasami-backend/internal/entity"
)

const (
	PiecesPerSide = board.Size
	CapturesToWin = PiecesPerSide
)

// Game - a board plus the turn, capture tallies and the history of successful moves.
type Game struct {
	board         *board.Board
	currentPlayer entity.Color
	blackCaptured int
	whiteCaptured int
	history       []entity.Move
}

// New - black moves first on a fresh board.
func New() *Game {
	return &Game{
		board:         board.New(),
		currentPlayer: entity.Black,
		history:       []entity.Move{},
	}
}

// MakeMove - moves a piece of the player on turn, removes the pieces it captures and passes the turn.
// Returns the captured positions. On error the game is unchanged.
func (that *Game) MakeMove(from, to entity.Position) ([]entity.Position, error) {
	if piece := that.board.PieceAt(from); piece != entity.None && piece != that.currentPlayer {
		return nil, fmt.Errorf("%w: %s to move, piece at %s is %s", apperror.ErrNotYourTurn, that.currentPlayer, from, piece)
	}

	if err := that.board.MovePiece(from, to); err != nil {
		return nil, fmt.Errorf("invalid move: %w", err)
	}

	captured := that.board.CheckCaptures(to)
	for _, pos := range captured {
		switch that.board.PieceAt(pos) {
		case entity.Black:
			that.blackCaptured++
		case entity.White:
			that.whiteCaptured++
		}

		// positions come from CheckCaptures, they are on the board
		_ = that.board.SetPieceAt(pos, entity.None)
	}

	that.history = append(that.history, entity.Move{From: from, To: to})
	that.currentPlayer = that.currentPlayer.Opponent()

	return captured, nil
}

func (that *Game) CurrentPlayer() entity.Color {
	return that.currentPlayer
}

// BlackCaptured - black pieces removed from play.
func (that *Game) BlackCaptured() int {
	return that.blackCaptured
}

// WhiteCaptured - white pieces removed from play.
func (that *Game) WhiteCaptured() int {
	return that.whiteCaptured
}

func (that *Game) PieceAt(pos entity.Position) entity.Color {
	return that.board.PieceAt(pos)
}

// BoardState - serialized board.
func (that *Game) BoardState() string {
	return that.board.Serialize()
}

// ValidMoves - destinations for the piece at pos, empty unless it belongs to the player on turn.
func (that *Game) ValidMoves(pos entity.Position) []entity.Position {
	if that.board.PieceAt(pos) != that.currentPlayer {
		return []entity.Position{}
	}

	return that.board.ValidMoves(pos)
}

// IsGameOver - one side has lost all its pieces. Moves are still accepted afterwards,
// stopping is up to the caller.
func (that *Game) IsGameOver() bool {
	return that.blackCaptured >= CapturesToWin || that.whiteCaptured >= CapturesToWin
}

// Winner - the side that captured every enemy piece, None while the game goes on.
func (that *Game) Winner() entity.Color {
	switch {
	case that.whiteCaptured >= CapturesToWin:
		return entity.Black
	case that.blackCaptured >= CapturesToWin:
		return entity.White
	default:
		return entity.None
	}
}

// History - copy of the successful moves, oldest first.
func (that *Game) History() []entity.Move {
	return slices.Clone(that.history)
}
