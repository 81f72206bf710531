package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/anisort/internal/events"
	"github.com/vmunix/anisort/internal/grouping"
	"github.com/vmunix/anisort/internal/naming"
	"github.com/vmunix/anisort/internal/organizer"
)

const reasonCanceled = "canceled"

// OrganizeOptions selects what an organize run touches.
type OrganizeOptions struct {
	Keys   []grouping.Key // Groups to organize; empty means all
	DryRun bool           // Plan destinations without touching files
}

type plannedFile struct {
	group  string
	source string
	dest   string
}

// Organize places the members of the selected groups at their synthesized
// destinations. Destinations for all selected groups are planned first so
// that collisions are caught before any file moves; colliding and duplicate
// members are reported and left alone. File-level failures never abort the
// run. Only an unwritable destination root or backup store does, with
// ErrResourceUnavailable.
//
// On cancellation the remaining files are reported as skipped and the
// report is returned without error.
func (p *Pipeline) Organize(ctx context.Context, scan *ScanResult, opts OrganizeOptions) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)
	report := &Report{RunID: runID, DryRun: opts.DryRun}

	root := p.cfg.Organize.DestinationRoot
	if root == "" {
		return nil, fmt.Errorf("%w: %w", ErrResourceUnavailable, ErrNoDestination)
	}
	safe := p.cfg.Organize.IsSafeMode()

	var org *organizer.Organizer
	if !opts.DryRun {
		if err := checkWritable(root); err != nil {
			return nil, fmt.Errorf("%w: destination root: %v", ErrResourceUnavailable, err)
		}
		if safe {
			var err error
			if org, err = p.organizer(); err != nil {
				return nil, err
			}
			if err := checkWritable(org.Store().Dir()); err != nil {
				return nil, fmt.Errorf("%w: backup store: %v", ErrResourceUnavailable, err)
			}
		} else {
			org = organizer.New(p.store, p.log)
		}
	}

	engine := scan.Engine
	groups := selectGroups(engine.Sorted(), opts.Keys)
	plans := p.plan(engine, groups, root, report)
	log.Info("organize started", "groups", len(groups), "planned", len(plans), "mode", p.mode, "safe", safe, "dry_run", opts.DryRun)

	total := len(plans)
	var current atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Pipeline.Workers, 1))
	for _, batch := range batchByGroup(plans) {
		g.Go(func() error {
			for _, pf := range batch {
				if gctx.Err() != nil {
					p.skip(gctx, runID, engine, report, pf, reasonCanceled)
					continue
				}
				n := current.Add(1)
				p.publish(gctx, &events.OrganizeProgress{
					BaseEvent: events.NewBaseEvent(events.EventOrganizeProgress, runID),
					Current:   int(n),
					Total:     total,
					Path:      pf.source,
					Group:     pf.group,
				})
				if opts.DryRun {
					report.add(Entry{Path: pf.source, Group: pf.group, Status: grouping.MemberPending, Destination: pf.dest})
					continue
				}
				if err := p.organizeFile(gctx, runID, org, safe, engine, report, pf); err != nil {
					return err
				}
			}
			return nil
		})
	}
	werr := g.Wait()

	report.Canceled = ctx.Err() != nil
	report.Groups = selectGroups(engine.Sorted(), opts.Keys)
	report.Duration = time.Since(start)
	report.sortEntries()

	p.publish(context.WithoutCancel(ctx), &events.RunCompleted{
		BaseEvent:  events.NewBaseEvent(events.EventRunCompleted, runID),
		Organized:  report.Organized,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
		Conflicts:  report.Conflicted,
		Duplicates: report.Duplicated,
		Canceled:   report.Canceled,
		DurationMS: report.Duration.Milliseconds(),
	})
	log.Info("organize complete",
		"organized", report.Organized,
		"skipped", report.Skipped,
		"conflicted", report.Conflicted,
		"duplicated", report.Duplicated,
		"failed", report.Failed,
		"canceled", report.Canceled)

	if werr != nil {
		return report, werr
	}
	return report, nil
}

// plan synthesizes a destination for every member and claims it. Members
// that cannot be organized are recorded in the report straight away.
func (p *Pipeline) plan(engine *grouping.Engine, groups []*grouping.Group, root string, report *Report) []plannedFile {
	planner := naming.NewPlanner()
	var claims []plannedFile

	for _, g := range groups {
		group := g.Key.String()
		for _, m := range g.Members {
			path := m.File.Path
			switch {
			case m.Status == grouping.MemberDuplicate:
				report.add(Entry{Path: path, Group: group, Status: grouping.MemberDuplicate, Stage: StageGroup, Reason: m.Reason})
				continue
			case m.Status == grouping.MemberOrganized:
				report.add(Entry{Path: path, Group: group, Status: grouping.MemberOrganized, Destination: m.Destination, Noop: true})
				continue
			case !m.Meta.HasEpisode():
				reason := naming.ErrNoEpisode.Error()
				p.mark(engine.MarkSkipped(path, reason))
				report.add(Entry{Path: path, Group: group, Status: grouping.MemberSkipped, Stage: StagePlan, Reason: reason})
				continue
			}

			dest, err := p.synth.Synthesize(g, m, root, p.scheme)
			if err != nil {
				p.mark(engine.MarkFailed(path, err.Error()))
				report.add(Entry{Path: path, Group: group, Status: grouping.MemberFailed, Stage: StagePlan, Reason: err.Error()})
				continue
			}
			// Collisions are collected from the planner once every claim is in.
			_ = planner.Claim(path, dest)
			p.mark(engine.SetDestination(path, dest))
			claims = append(claims, plannedFile{group: group, source: path, dest: dest})
		}
	}

	conflicts := make(map[string]*naming.ConflictError)
	for _, c := range planner.Conflicts() {
		conflicts[c.Destination] = c
	}

	plans := make([]plannedFile, 0, len(claims))
	for _, c := range claims {
		if ce, ok := conflicts[filepath.Clean(c.dest)]; ok {
			p.mark(engine.MarkConflict(c.source, ce.Error()))
			report.add(Entry{Path: c.source, Group: c.group, Status: grouping.MemberConflict, Destination: c.dest, Stage: StagePlan, Reason: ce.Error()})
			continue
		}
		plans = append(plans, c)
	}
	return plans
}

func (p *Pipeline) organizeFile(ctx context.Context, runID string, org *organizer.Organizer, safe bool, engine *grouping.Engine, report *Report, pf plannedFile) error {
	op, err := org.Organize(ctx, pf.source, pf.dest, p.mode, safe)
	if err == nil {
		p.mark(engine.MarkOrganized(pf.source, pf.dest))
		report.add(Entry{
			Path:        pf.source,
			Group:       pf.group,
			Status:      grouping.MemberOrganized,
			Destination: pf.dest,
			OperationID: op.ID,
			Noop:        op.Noop,
		})
		p.publish(ctx, &events.FileOrganized{
			BaseEvent:   events.NewBaseEvent(events.EventFileOrganized, runID),
			OperationID: op.ID,
			Source:      pf.source,
			Destination: pf.dest,
			Mode:        string(op.Mode),
			SizeBytes:   op.FileSize,
			Noop:        op.Noop,
		})
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		p.skip(ctx, runID, engine, report, pf, reasonCanceled)
		return nil
	}
	if errors.Is(err, organizer.ErrAlreadyPresent) {
		p.skip(ctx, runID, engine, report, pf, organizer.ErrAlreadyPresent.Error())
		return nil
	}

	entry := Entry{Path: pf.source, Group: pf.group, Destination: pf.dest, Stage: StageOrganize, Reason: err.Error()}
	var te *organizer.TransactionError
	if errors.As(err, &te) {
		entry.Stage = StageOrganize + ":" + te.Stage
		entry.OperationID = te.OperationID
	}

	if errors.Is(err, organizer.ErrDestinationExists) {
		entry.Status = grouping.MemberConflict
		p.mark(engine.MarkConflict(pf.source, err.Error()))
	} else {
		entry.Status = grouping.MemberFailed
		p.mark(engine.MarkFailed(pf.source, err.Error()))
	}
	report.add(entry)
	p.publish(ctx, &events.FileFailed{
		BaseEvent:   events.NewBaseEvent(events.EventFileFailed, runID),
		OperationID: entry.OperationID,
		Source:      pf.source,
		Destination: pf.dest,
		Stage:       entry.Stage,
		Reason:      entry.Reason,
	})
	p.log.Warn("organize failed", "run_id", runID, "src", pf.source, "dest", pf.dest, "stage", entry.Stage, "error", err)

	if errors.Is(err, organizer.ErrStoreUnavailable) {
		return fmt.Errorf("%w: backup store: %v", ErrResourceUnavailable, err)
	}
	return nil
}

func (p *Pipeline) skip(ctx context.Context, runID string, engine *grouping.Engine, report *Report, pf plannedFile, reason string) {
	p.mark(engine.MarkSkipped(pf.source, reason))
	report.add(Entry{Path: pf.source, Group: pf.group, Status: grouping.MemberSkipped, Destination: pf.dest, Stage: StageOrganize, Reason: reason})
	p.publish(context.WithoutCancel(ctx), &events.FileSkipped{
		BaseEvent: events.NewBaseEvent(events.EventFileSkipped, runID),
		Source:    pf.source,
		Reason:    reason,
	})
}

func (p *Pipeline) mark(err error) {
	if err != nil {
		p.log.Warn("update group state failed", "error", err)
	}
}

func selectGroups(groups []*grouping.Group, keys []grouping.Key) []*grouping.Group {
	if len(keys) == 0 {
		return groups
	}
	return slices.DeleteFunc(groups, func(g *grouping.Group) bool {
		return !slices.Contains(keys, g.Key)
	})
}

// batchByGroup splits plans into consecutive runs sharing a group.
func batchByGroup(plans []plannedFile) [][]plannedFile {
	var out [][]plannedFile
	for i := 0; i < len(plans); {
		j := i + 1
		for j < len(plans) && plans[j].group == plans[i].group {
			j++
		}
		out = append(out, plans[i:j])
		i = j
	}
	return out
}

func checkWritable(root string) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(root, ".anisort-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
