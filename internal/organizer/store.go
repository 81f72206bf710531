package organizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// StoreFile is the name of the operation index inside the backup directory.
const StoreFile = "operations.json"

// Store persists operation records as a single JSON document keyed by
// operation ID. Every change rewrites the file atomically.
type Store struct {
	mu   sync.Mutex
	dir  string
	path string
	ops  map[string]*Operation
}

// OpenStore loads (or creates) the store in backupDir.
func OpenStore(backupDir string) (*Store, error) {
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s := &Store{
		dir:  backupDir,
		path: filepath.Join(backupDir, StoreFile),
		ops:  make(map[string]*Operation),
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.ops); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	for id, op := range s.ops {
		op.ID = id
	}
	return s, nil
}

// Dir returns the backup directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put inserts or replaces a record. On write failure the in-memory state is
// left unchanged.
func (s *Store) Put(op *Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.ops[op.ID]
	cp := *op
	s.ops[op.ID] = &cp
	if err := s.flushLocked(); err != nil {
		if had {
			s.ops[op.ID] = prev
		} else {
			delete(s.ops, op.ID)
		}
		return err
	}
	return nil
}

// Delete removes a record.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.ops[id]
	if !had {
		return nil
	}
	delete(s.ops, id)
	if err := s.flushLocked(); err != nil {
		s.ops[id] = prev
		return err
	}
	return nil
}

// Get returns a copy of a record.
func (s *Store) Get(id string) (Operation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	if !ok {
		return Operation{}, false
	}
	return *op, true
}

// List returns copies of all records, oldest first.
func (s *Store) List() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Operation, 0, len(s.ops))
	for _, op := range s.ops {
		out = append(out, *op)
	}
	slices.SortFunc(out, func(a, b Operation) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.ops, "", "  ")
	if err != nil {
		return fmt.Errorf("encode operations: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".operations-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrStoreUnavailable, err)
	}
	return nil
}
