package pipeline

import "errors"

var (
	// ErrResourceUnavailable aborts a whole run: the destination root or the
	// backup store cannot be written.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrNoDestination indicates no destination root was configured.
	ErrNoDestination = errors.New("no destination root configured")

	// ErrUnknownParser indicates an unsupported parser engine name.
	ErrUnknownParser = errors.New("unknown parser engine")

	// ErrUnknownProvider indicates an unsupported catalog provider name.
	ErrUnknownProvider = errors.New("unknown catalog provider")
)
