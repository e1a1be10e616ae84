package entity

import "fmt"

// Position - board coordinates. Validity depends on the board it is used with.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Position) String() string {
	return fmt.Sprintf("%d,%d", that.Row, that.Col)
}

// Move - a successful slide kept in the game history.
type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}
