package organizer

import (
	"errors"
	"fmt"
)

var (
	// ErrDestinationExists indicates the destination holds a different file.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrAlreadyPresent indicates a move whose destination already holds a
	// separate file with the same bytes. The source is left in place.
	ErrAlreadyPresent = errors.New("identical copy already at destination")

	// ErrCopyFailed indicates a file copy failed.
	ErrCopyFailed = errors.New("failed to copy file")

	// ErrBackupMissing indicates an operation has no usable backup.
	ErrBackupMissing = errors.New("backup missing")

	// ErrOperationNotFound indicates no record exists for an operation ID.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrUnknownMode indicates an unsupported organize mode.
	ErrUnknownMode = errors.New("unknown organize mode")

	// ErrStoreUnavailable indicates the backup metadata store could not be written.
	ErrStoreUnavailable = errors.New("backup store unavailable")
)

// Stages of an organize transaction, reported in TransactionError.
const (
	StageStat    = "stat"
	StageBackup  = "backup"
	StagePersist = "persist"
	StageMkdir   = "mkdir"
	StageApply   = "apply"
	StageCommit  = "commit"
)

// TransactionError reports a failed organize. When OperationID is set the
// record was persisted as CREATED and can be rolled back.
type TransactionError struct {
	OperationID string
	Path        string
	Stage       string
	Err         error
}

func (e *TransactionError) Error() string {
	if e.OperationID != "" {
		return fmt.Sprintf("organize %s (op %s) at %s: %v", e.Path, e.OperationID, e.Stage, e.Err)
	}
	return fmt.Sprintf("organize %s at %s: %v", e.Path, e.Stage, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// RollbackError reports a failed rollback.
type RollbackError struct {
	OperationID string
	Err         error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback %s: %v", e.OperationID, e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}
