package release

import (
	"errors"
	"fmt"
)

// ErrParserPanic indicates a parser implementation panicked.
var ErrParserPanic = errors.New("parser panicked")

// ParseError describes a failed parse. It never escapes Normalize; it is
// recorded on the resulting Metadata instead.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
