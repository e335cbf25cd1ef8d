package graph

import "errors"

var (
	// ErrInvalidIndex is returned for an element index outside [0, Len).
	ErrInvalidIndex = errors.New("invalid index")

	// ErrCapacityExceeded is returned when adding to a full arena.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidDirection is returned for a diagonal direction where only a
	// cardinal one is accepted, or for a direction slot that is already
	// occupied.
	ErrInvalidDirection = errors.New("invalid direction")
)
