package board

import (
	"fmt"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/entity"
)

// Size - number of rows and columns of the board.
const Size = 9

// directions in scan order: right, left, down, up.
var directions = [4]entity.Position{
	{Row: 0, Col: 1},
	{Row: 0, Col: -1},
	{Row: 1, Col: 0},
	{Row: -1, Col: 0},
}

// Board - square grid of cells. It knows nothing about turns or players.
type Board struct {
	grid [Size][Size]entity.Color
}

// New - creates a board with the starting layout.
func New() *Board {
	board := &Board{}
	board.Reset()

	return board
}

// Reset - puts the board back to the starting layout: row 0 black, last row white.
func (that *Board) Reset() {
	that.grid = [Size][Size]entity.Color{}

	for col := 0; col < Size; col++ {
		that.grid[0][col] = entity.Black
		that.grid[Size-1][col] = entity.White
	}
}

// Clone - returns an independent copy of the board.
func (that *Board) Clone() *Board {
	clone := *that
	return &clone
}

func (that *Board) IsValidPosition(pos entity.Position) bool {
	return pos.Row >= 0 && pos.Row < Size && pos.Col >= 0 && pos.Col < Size
}

// PieceAt - returns the cell state, None for any position off the board.
func (that *Board) PieceAt(pos entity.Position) entity.Color {
	if !that.IsValidPosition(pos) {
		return entity.None
	}

	return that.grid[pos.Row][pos.Col]
}

func (that *Board) SetPieceAt(pos entity.Position, color entity.Color) error {
	if !that.IsValidPosition(pos) {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidPosition, pos)
	}

	that.grid[pos.Row][pos.Col] = color

	return nil
}

// Count - number of pieces of the given color on the board.
func (that *Board) Count(color entity.Color) int {
	count := 0

	for row := range that.grid {
		for _, cell := range that.grid[row] {
			if cell == color {
				count++
			}
		}
	}

	return count
}

// MovePiece - slides the piece at from to to. Nothing changes unless every check passes.
func (that *Board) MovePiece(from, to entity.Position) error {
	if !that.IsValidPosition(from) || !that.IsValidPosition(to) {
		return fmt.Errorf("%w: move %s -> %s is off the board", apperror.ErrInvalidPosition, from, to)
	}

	color := that.PieceAt(from)
	if color == entity.None {
		return fmt.Errorf("%w: no piece at %s", apperror.ErrBlocked, from)
	}

	if from.Row != to.Row && from.Col != to.Col {
		return fmt.Errorf("%w: move %s -> %s is not along a row or column", apperror.ErrInvalidPosition, from, to)
	}

	if !that.isPathClear(from, to) {
		return fmt.Errorf("%w: path %s -> %s is obstructed", apperror.ErrBlocked, from, to)
	}

	if that.PieceAt(to) != entity.None {
		return fmt.Errorf("%w: %s", apperror.ErrOccupied, to)
	}

	that.grid[to.Row][to.Col] = color
	that.grid[from.Row][from.Col] = entity.None

	return nil
}

// ValidMoves - reachable empty cells from the given piece: right, then left, down, up,
// nearest first in each direction.
func (that *Board) ValidMoves(from entity.Position) []entity.Position {
	moves := make([]entity.Position, 0)

	if that.PieceAt(from) == entity.None {
		return moves
	}

	for _, dir := range directions {
		pos := step(from, dir)
		for that.IsValidPosition(pos) && that.PieceAt(pos) == entity.None {
			moves = append(moves, pos)
			pos = step(pos, dir)
		}
	}

	return moves
}

// CheckCaptures - enemy runs sandwiched between the piece at lastMove and an allied piece.
// Detection only, the caller removes the pieces.
func (that *Board) CheckCaptures(lastMove entity.Position) []entity.Position {
	captured := make([]entity.Position, 0)

	mover := that.PieceAt(lastMove)
	if mover == entity.None {
		return captured
	}

	enemy := mover.Opponent()

	for _, dir := range directions {
		var run []entity.Position

		pos := step(lastMove, dir)
		for that.IsValidPosition(pos) && that.PieceAt(pos) == enemy {
			run = append(run, pos)
			pos = step(pos, dir)
		}

		if len(run) > 0 && that.PieceAt(pos) == mover {
			captured = append(captured, run...)
		}
	}

	return captured
}

// isPathClear - only meaningful for positions sharing a row or a column. Endpoints are excluded.
func (that *Board) isPathClear(from, to entity.Position) bool {
	dir := entity.Position{Row: sign(to.Row - from.Row), Col: sign(to.Col - from.Col)}
	if dir.Row != 0 && dir.Col != 0 {
		return false
	}

	for pos := step(from, dir); pos != to; pos = step(pos, dir) {
		if that.PieceAt(pos) != entity.None {
			return false
		}
	}

	return true
}

func step(pos, dir entity.Position) entity.Position {
	return entity.Position{Row: pos.Row + dir.Row, Col: pos.Col + dir.Col}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
