package pipeline

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/anisort/internal/grouping"
)

// Report stages name where a file left the pipeline.
const (
	StageGroup    = "group"
	StagePlan     = "plan"
	StageOrganize = "organize"
)

// Entry is the outcome for one file of an organize run.
type Entry struct {
	Path        string                `json:"path"`
	Group       string                `json:"group"`
	Status      grouping.MemberStatus `json:"status"`
	Destination string                `json:"destination,omitempty"`
	Stage       string                `json:"stage,omitempty"`
	Reason      string                `json:"reason,omitempty"`
	OperationID string                `json:"operation_id,omitempty"`
	Noop        bool                  `json:"noop,omitempty"`
}

// Report summarizes an organize run. Every file of the selected groups has
// exactly one entry.
type Report struct {
	RunID      string            `json:"run_id"`
	DryRun     bool              `json:"dry_run,omitempty"`
	Canceled   bool              `json:"canceled,omitempty"`
	Organized  int               `json:"organized"`
	Planned    int               `json:"planned,omitempty"`
	Skipped    int               `json:"skipped"`
	Conflicted int               `json:"conflicted"`
	Duplicated int               `json:"duplicated"`
	Failed     int               `json:"failed"`
	Entries    []Entry           `json:"entries"`
	Groups     []*grouping.Group `json:"groups,omitempty"`
	Duration   time.Duration     `json:"duration"`

	mu sync.Mutex
}

func (r *Report) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch e.Status {
	case grouping.MemberOrganized:
		r.Organized++
	case grouping.MemberSkipped:
		r.Skipped++
	case grouping.MemberConflict:
		r.Conflicted++
	case grouping.MemberDuplicate:
		r.Duplicated++
	case grouping.MemberFailed:
		r.Failed++
	case grouping.MemberPending:
		r.Planned++
	}
	r.Entries = append(r.Entries, e)
}

func (r *Report) sortEntries() {
	slices.SortFunc(r.Entries, func(a, b Entry) int {
		return strings.Compare(a.Path, b.Path)
	})
}

// Entry returns the entry for path.
func (r *Report) Entry(path string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}
