// internal/events/pipeline.go
package events

// Event type constants
const (
	EventScanStarted       = "scan.started"
	EventScanProgress      = "scan.progress"
	EventScanCompleted     = "scan.completed"
	EventFileOrganized     = "organize.file.organized"
	EventFileSkipped       = "organize.file.skipped"
	EventFileFailed        = "organize.file.failed"
	EventOrganizeProgress  = "organize.progress"
	EventRunCompleted      = "run.completed"
	EventRollbackCompleted = "rollback.completed"
	EventBackupsPurged     = "backups.purged"
)

// ScanStarted is emitted when a directory scan begins.
type ScanStarted struct {
	BaseEvent
	Root      string `json:"root"`
	Recursive bool   `json:"recursive"`
}

// ScanProgress reports how many files have been processed so far.
type ScanProgress struct {
	BaseEvent
	Processed int    `json:"processed"`
	Path      string `json:"path"`
}

// ScanCompleted is emitted once every file has been grouped.
type ScanCompleted struct {
	BaseEvent
	Root       string `json:"root"`
	Files      int    `json:"files"`
	Groups     int    `json:"groups"`
	Matched    int    `json:"matched"`
	Unmatched  int    `json:"unmatched"`
	Warnings   int    `json:"warnings"`
	DurationMS int64  `json:"duration_ms"`
}

// FileOrganized is emitted for every file placed at its destination.
type FileOrganized struct {
	BaseEvent
	OperationID string `json:"operation_id,omitempty"` // Empty for no-ops
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Mode        string `json:"mode"`
	SizeBytes   int64  `json:"size_bytes"`
	Noop        bool   `json:"noop,omitempty"`
}

// FileSkipped is emitted for members that were not organized on purpose
// (duplicates, conflicts, missing episode numbers, dry runs).
type FileSkipped struct {
	BaseEvent
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// FileFailed is emitted when organizing a file fails.
type FileFailed struct {
	BaseEvent
	OperationID string `json:"operation_id,omitempty"` // Set when a CREATED record was left behind
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Reason      string `json:"reason"`
}

// OrganizeProgress reports progress through the planned files of a run.
type OrganizeProgress struct {
	BaseEvent
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Path    string `json:"path"`
	Group   string `json:"group"`
}

// RunCompleted is emitted at the end of an organize run.
type RunCompleted struct {
	BaseEvent
	Organized  int   `json:"organized"`
	Skipped    int   `json:"skipped"`
	Failed     int   `json:"failed"`
	Conflicts  int   `json:"conflicts"`
	Duplicates int   `json:"duplicates"`
	Canceled   bool  `json:"canceled,omitempty"`
	DurationMS int64 `json:"duration_ms"`
}

// AllSucceeded returns true if nothing failed and the run was not canceled.
func (e *RunCompleted) AllSucceeded() bool {
	return e.Failed == 0 && !e.Canceled
}

// RollbackCompleted is emitted after an operation has been rolled back.
type RollbackCompleted struct {
	BaseEvent
	OperationID string `json:"operation_id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// BackupsPurged is emitted after old backups were deleted.
type BackupsPurged struct {
	BaseEvent
	Count         int `json:"count"`
	RetentionDays int `json:"retention_days"`
}
