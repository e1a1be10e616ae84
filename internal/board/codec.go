package board

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/hasami-backend/internal/apperror"
	"github.com/rocketscienceinc/hasami-backend/internal/entity"
)

// Serialize - row-major list of rows of one-letter tokens, e.g. [["B","B",...],...].
func (that *Board) Serialize() string {
	// Color marshals through MarshalText, the grid cannot fail to encode.
	data, _ := json.Marshal(that.grid)

	return string(data)
}

// Deserialize - replaces the grid with the parsed one. On any error the board is left as it was.
func (that *Board) Deserialize(data string) error {
	var rows [][]string
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return fmt.Errorf("%w: board: %v", apperror.ErrMalformedData, err)
	}

	if len(rows) != Size {
		return fmt.Errorf("%w: board has %d rows, want %d", apperror.ErrMalformedData, len(rows), Size)
	}

	var grid [Size][Size]entity.Color

	for row, cells := range rows {
		if len(cells) != Size {
			return fmt.Errorf("%w: row %d has %d cells, want %d", apperror.ErrMalformedData, row, len(cells), Size)
		}

		for col, token := range cells {
			color, err := entity.ParseToken(token)
			if err != nil {
				return fmt.Errorf("board cell %d,%d: %w", row, col, err)
			}

			grid[row][col] = color
		}
	}

	that.grid = grid

	return nil
}

func (that *Board) MarshalJSON() ([]byte, error) {
	return []byte(that.Serialize()), nil
}

func (that *Board) UnmarshalJSON(data []byte) error {
	return that.Deserialize(string(data))
}
