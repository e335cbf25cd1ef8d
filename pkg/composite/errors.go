package composite

import "errors"

// ErrIOFailure is returned when a set cannot be written to or read from a
// file, including parse errors in the file contents.
var ErrIOFailure = errors.New("composite: i/o failure")
