package scanner

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("root not found")
	ErrNotADirectory = errors.New("root is not a directory")
)

// ScanError reports a scan that could not start or continue.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal problem met during traversal. The affected entry
// was skipped.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return w.Path + ": " + w.Err.Error()
}
