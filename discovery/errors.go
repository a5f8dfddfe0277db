package discovery

import "errors"

var (
	// ErrInvalidArgument is returned for an unrecognised sort type.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when the reference podcast of a similarity
	// lookup is not part of the collection.
	ErrNotFound = errors.New("not found")
)
