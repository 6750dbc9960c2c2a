package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the upstream has no such video or the search had no hits.
	ErrNotFound = errors.New("no video found")
	// ErrUpstream covers every other extraction failure.
	ErrUpstream = errors.New("upstream extraction failed")
	// ErrNoFormat means no deliverable URL of any kind exists.
	ErrNoFormat = errors.New("no usable format")
)

// ResolutionError is returned when a query could not be turned into metadata.
// Err wraps ErrNotFound or ErrUpstream.
type ResolutionError struct {
	Query string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Query, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// SelectionError is returned when no format matched the requested mode.
type SelectionError struct {
	ID   string
	Mode Mode
	Err  error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("select %s format for %s: %v", e.Mode, e.ID, e.Err)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}
