package graph

import "errors"

// Sentinel errors for graph operations. Call sites wrap them with the
// offending item, so match with errors.Is.
var (
	// ErrInvalidArgument is returned for malformed mutation requests: an
	// empty item, a self-loop, or a non-positive weight.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a query references an item that is not
	// in the graph. A missing edge is not an error; EdgeWeight returns 0.
	ErrNotFound = errors.New("item not found")
)
