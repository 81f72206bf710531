package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Organizer applies file operations and rolls them back from backups.
// Operations on the same destination are serialized.
type Organizer struct {
	store *Store
	locks keyedMutex
	log   *slog.Logger

	now   func() time.Time
	newID func() string
	apply func(mode Mode, source, destination string) error
}

// New creates an organizer that keeps backups and records in store. A nil
// store is allowed when only unsafe operations are performed.
func New(store *Store, log *slog.Logger) *Organizer {
	if log == nil {
		log = slog.Default()
	}
	return &Organizer{
		store: store,
		log:   log.With("component", "organizer"),
		now:   time.Now,
		newID: uuid.NewString,
		apply: apply,
	}
}

// Store returns the backing record store.
func (o *Organizer) Store() *Store {
	return o.store
}

// Organize places source at destination. With safe set, the source is
// backed up and a CREATED record is persisted before anything is mutated,
// then marked COMMITTED once the file is in place.
//
// Organizing a file that is already at its destination (same path, same
// inode, or identical bytes) is a no-op and returns an operation with Noop
// set. A move onto a separate file with identical bytes yields
// ErrAlreadyPresent instead, since the source would stay behind. A
// different file at the destination yields ErrDestinationExists.
func (o *Organizer) Organize(ctx context.Context, source, destination string, mode Mode, safe bool) (*Operation, error) {
	switch mode {
	case ModeCopy, ModeMove, ModeHardlink:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	source = filepath.Clean(source)
	destination = filepath.Clean(destination)

	unlock := o.locks.Lock(destination)
	defer unlock()

	srcInfo, err := os.Stat(source)
	if err != nil {
		return nil, &TransactionError{Path: source, Stage: StageStat, Err: err}
	}
	op := &Operation{
		SourcePath:      source,
		DestinationPath: destination,
		Mode:            mode,
		FileSize:        srcInfo.Size(),
		Timestamp:       o.now().UTC(),
	}

	noop, err := o.alreadyInPlace(source, destination, srcInfo, mode)
	if err != nil {
		return nil, &TransactionError{Path: source, Stage: StageStat, Err: err}
	}
	if noop {
		op.Noop = true
		op.Status = StatusCommitted
		o.log.Debug("already organized", "src", source, "dest", destination)
		return op, nil
	}

	// Cancellation is honored up to here. Past the backup the operation runs
	// to completion so no half-applied state is left behind.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	op.ID = o.newID()
	op.Status = StatusCreated
	if safe {
		if err := o.backup(op); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return nil, o.failed(op, safe, StageMkdir, err)
	}
	if err := o.apply(mode, source, destination); err != nil {
		if errors.Is(err, ErrDestinationExists) {
			// Someone else claimed the destination; nothing of ours is there.
			return nil, o.abandon(op, safe, err)
		}
		return nil, o.failed(op, safe, StageApply, err)
	}

	op.Status = StatusCommitted
	if safe {
		if err := o.store.Put(op); err != nil {
			return nil, &TransactionError{OperationID: op.ID, Path: source, Stage: StageCommit, Err: err}
		}
	}
	o.log.Debug("organized", "op", op.ID, "mode", mode, "src", source, "dest", destination, "size_bytes", op.FileSize)
	return op, nil
}

func (o *Organizer) alreadyInPlace(source, destination string, srcInfo fs.FileInfo, mode Mode) (bool, error) {
	if source == destination {
		return true, nil
	}
	dstInfo, err := os.Stat(destination)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if os.SameFile(srcInfo, dstInfo) {
		return true, nil
	}
	if dstInfo.Size() == srcInfo.Size() && !dstInfo.IsDir() {
		same, err := sameContent(source, destination)
		if err != nil {
			return false, err
		}
		if same && mode == ModeMove {
			return false, fmt.Errorf("%s: %w", destination, ErrAlreadyPresent)
		}
		if same {
			return true, nil
		}
	}
	return false, fmt.Errorf("%s: %w", destination, ErrDestinationExists)
}

func (o *Organizer) backup(op *Operation) error {
	if o.store == nil {
		return &TransactionError{Path: op.SourcePath, Stage: StagePersist, Err: ErrStoreUnavailable}
	}
	dir := filepath.Join(o.store.Dir(), op.ID)
	op.BackupPath = filepath.Join(dir, filepath.Base(op.SourcePath))

	if _, err := CopyFile(op.SourcePath, op.BackupPath); err != nil {
		_ = os.RemoveAll(dir)
		return &TransactionError{Path: op.SourcePath, Stage: StageBackup, Err: err}
	}
	if err := o.store.Put(op); err != nil {
		_ = os.RemoveAll(dir)
		return &TransactionError{Path: op.SourcePath, Stage: StagePersist, Err: err}
	}
	return nil
}

// failed reports an error after the backup stage. The CREATED record stays
// behind so the operation can be rolled back.
func (o *Organizer) failed(op *Operation, safe bool, stage string, err error) error {
	te := &TransactionError{Path: op.SourcePath, Stage: stage, Err: err}
	if safe {
		te.OperationID = op.ID
	}
	o.log.Warn("organize failed", "op", op.ID, "src", op.SourcePath, "dest", op.DestinationPath, "stage", stage, "error", err)
	return te
}

// abandon drops the record and backup of an operation whose apply step
// never placed anything at the destination, so a later rollback cannot
// remove a file that belongs to someone else.
func (o *Organizer) abandon(op *Operation, safe bool, err error) error {
	if safe {
		if derr := o.store.Delete(op.ID); derr != nil {
			o.log.Warn("drop record failed", "op", op.ID, "error", derr)
			return &TransactionError{OperationID: op.ID, Path: op.SourcePath, Stage: StageApply, Err: err}
		}
		_ = os.RemoveAll(filepath.Dir(op.BackupPath))
	}
	o.log.Warn("destination taken during organize", "src", op.SourcePath, "dest", op.DestinationPath)
	return &TransactionError{Path: op.SourcePath, Stage: StageApply, Err: err}
}

func apply(mode Mode, source, destination string) error {
	switch mode {
	case ModeCopy:
		_, err := CopyFile(source, destination)
		return err
	case ModeMove:
		return moveFile(source, destination)
	case ModeHardlink:
		return linkFile(source, destination)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Rollback undoes an operation: the file it created at the destination is
// removed, the source is restored from the backup, and the record and
// backup are deleted. Records left in CREATED by an interrupted run are
// rolled back the same way.
func (o *Organizer) Rollback(id string) (*Operation, error) {
	if o.store == nil {
		return nil, &RollbackError{OperationID: id, Err: ErrOperationNotFound}
	}
	op, ok := o.store.Get(id)
	if !ok {
		return nil, &RollbackError{OperationID: id, Err: ErrOperationNotFound}
	}
	if op.BackupPath == "" {
		return nil, &RollbackError{OperationID: id, Err: ErrBackupMissing}
	}
	if _, err := os.Stat(op.BackupPath); err != nil {
		return nil, &RollbackError{OperationID: id, Err: fmt.Errorf("%w: %v", ErrBackupMissing, err)}
	}

	unlock := o.locks.Lock(op.DestinationPath)
	defer unlock()

	if err := o.removeDestination(op); err != nil {
		return nil, &RollbackError{OperationID: id, Err: err}
	}
	if err := replaceFile(op.BackupPath, op.SourcePath); err != nil {
		return nil, &RollbackError{OperationID: id, Err: fmt.Errorf("restore source: %w", err)}
	}
	if err := o.store.Delete(id); err != nil {
		return nil, &RollbackError{OperationID: id, Err: err}
	}
	if err := os.RemoveAll(filepath.Dir(op.BackupPath)); err != nil {
		o.log.Warn("remove backup failed", "op", id, "path", op.BackupPath, "error", err)
	}

	op.Status = StatusRolledBack
	o.log.Info("rolled back", "op", id, "src", op.SourcePath, "dest", op.DestinationPath)
	return &op, nil
}

// removeDestination deletes the file an operation placed at its destination.
// The destination did not exist before the operation, so anything at that
// path for an unfinished record is ours. A committed destination is only
// removed while it still has the size that was organized.
func (o *Organizer) removeDestination(op Operation) error {
	if op.DestinationPath == op.SourcePath {
		return nil
	}
	info, err := os.Lstat(op.DestinationPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat destination: %w", err)
	}
	if op.Status == StatusCommitted && info.Size() != op.FileSize {
		o.log.Warn("destination changed since organize, leaving it", "op", op.ID, "dest", op.DestinationPath)
		return nil
	}
	if err := os.Remove(op.DestinationPath); err != nil {
		return fmt.Errorf("remove destination: %w", err)
	}
	return nil
}

// Purge deletes backups of committed operations older than retention and
// returns how many were removed.
func (o *Organizer) Purge(retention time.Duration) (int, error) {
	if o.store == nil {
		return 0, nil
	}
	cutoff := o.now().Add(-retention)
	purged := 0
	for _, op := range o.store.List() {
		if op.Status != StatusCommitted || !op.Timestamp.Before(cutoff) {
			continue
		}
		if op.BackupPath != "" {
			if err := os.RemoveAll(filepath.Dir(op.BackupPath)); err != nil {
				return purged, fmt.Errorf("remove backup %s: %w", op.ID, err)
			}
		}
		if err := o.store.Delete(op.ID); err != nil {
			return purged, err
		}
		purged++
	}
	if purged > 0 {
		o.log.Info("purged backups", "count", purged, "retention", retention)
	}
	return purged, nil
}

// List returns all recorded operations, oldest first.
func (o *Organizer) List() []Operation {
	if o.store == nil {
		return nil
	}
	return o.store.List()
}

// Pending returns records left in CREATED by an interrupted run.
func (o *Organizer) Pending() []Operation {
	var out []Operation
	for _, op := range o.List() {
		if op.Status == StatusCreated {
			out = append(out, op)
		}
	}
	return out
}
