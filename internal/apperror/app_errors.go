package apperror

import "errors"

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrBlocked         = errors.New("move is blocked")
	ErrOccupied        = errors.New("cell is already occupied")
	ErrMalformedData   = errors.New("malformed data")
	ErrIOFailure       = errors.New("io failure")
	ErrGameNotFound    = errors.New("game not found")
)
