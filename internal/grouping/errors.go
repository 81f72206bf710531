package grouping

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFile is returned when a path was never added to the engine.
var ErrUnknownFile = errors.New("file not in any group")

// DuplicateEpisodeError describes several files claiming the same episode
// of the same group.
type DuplicateEpisodeError struct {
	Key     Key
	Episode int
	Paths   []string
}

func (e *DuplicateEpisodeError) Error() string {
	return fmt.Sprintf("duplicate episode %d in %s: %s", e.Episode, e.Key, strings.Join(e.Paths, ", "))
}
