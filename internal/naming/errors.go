package naming

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPathTraversal is returned when a synthesized path escapes its root.
	ErrPathTraversal = errors.New("path escapes destination root")
	// ErrNoEpisode is returned for files without an episode number.
	ErrNoEpisode = errors.New("no episode number")
	// ErrUnknownScheme is returned for an unrecognized naming scheme.
	ErrUnknownScheme = errors.New("unknown naming scheme")
	// ErrConflict is returned when two files resolve to the same destination.
	ErrConflict = errors.New("destination conflict")
)

// ConflictError lists every source that claimed one destination.
type ConflictError struct {
	Destination string
	Sources     []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d files resolve to %s: %s", len(e.Sources), e.Destination, strings.Join(e.Sources, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
