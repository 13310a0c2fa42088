package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove is returned when a move cannot be applied to a position.
	ErrIllegalMove = errors.New("illegal move")
	// ErrIllegalState is returned when a query is undefined for a position,
	// such as the utility of a non-terminal position.
	ErrIllegalState = errors.New("illegal state")
	// ErrInvalidArgument is returned for malformed inputs to constructors and search.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IllegalMoveError describes why a particular move was rejected.
type IllegalMoveError struct {
	Move   Move
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %v: %s", e.Move, e.Reason)
}

// Unwrap lets errors.Is match ErrIllegalMove.
func (e *IllegalMoveError) Unwrap() error {
	return ErrIllegalMove
}

func illegalMove(m Move, reason string) error {
	return &IllegalMoveError{Move: m, Reason: reason}
}
