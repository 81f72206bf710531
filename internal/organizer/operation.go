// Package organizer moves, copies or hardlinks files into their final
// location with optional backup-based rollback.
package organizer

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how a file reaches its destination.
type Mode string

const (
	ModeCopy     Mode = "copy"
	ModeMove     Mode = "move"
	ModeHardlink Mode = "hardlink"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCopy, ModeMove, ModeHardlink:
		return m, nil
	case "":
		return ModeMove, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Status is the lifecycle state of an operation record.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusCommitted  Status = "COMMITTED"
	StatusRolledBack Status = "ROLLED_BACK"
)

// Operation describes one organize step.
type Operation struct {
	ID              string    `json:"-"`
	SourcePath      string    `json:"original_source_path"`
	BackupPath      string    `json:"backup_path"`
	DestinationPath string    `json:"destination_path"`
	Timestamp       time.Time `json:"timestamp"`
	FileSize        int64     `json:"file_size"`
	Mode            Mode      `json:"mode"`
	Status          Status    `json:"status"`

	// Noop is set when nothing had to be done; such operations are never persisted.
	Noop bool `json:"-"`
}
