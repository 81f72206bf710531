package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/anisort/internal/catalog"
	"github.com/vmunix/anisort/internal/events"
	"github.com/vmunix/anisort/internal/grouping"
	"github.com/vmunix/anisort/internal/scanner"
)

// ScanResult is the outcome of one scan run.
type ScanResult struct {
	RunID            string                            `json:"run_id"`
	Root             string                            `json:"root"`
	Files            int                               `json:"files"`
	Groups           []*grouping.Group                 `json:"groups"`
	Duplicates       []*grouping.DuplicateEpisodeError `json:"-"`
	Warnings         []scanner.Warning                 `json:"-"`
	ResolutionErrors []*catalog.ResolutionError        `json:"-"`
	Duration         time.Duration                     `json:"duration"`

	// Engine holds the live groups for a following Organize call.
	Engine *grouping.Engine `json:"-"`
}

// Matched counts groups resolved against the catalog.
func (r *ScanResult) Matched() int {
	n := 0
	for _, g := range r.Groups {
		if g.Candidate != nil {
			n++
		}
	}
	return n
}

// Scan discovers media files under root, parses and resolves them on a
// bounded worker pool and groups the results. Catalog failures degrade to
// unmatched groups; only an unreadable root fails the scan.
func (p *Pipeline) Scan(ctx context.Context, root string) (*ScanResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)

	sc := scanner.New(p.scannerOptions())
	engine := grouping.NewEngine()
	lookups := catalog.NewRunCache(p.catalog, p.cfg.Catalog.Language, log)

	p.publish(ctx, &events.ScanStarted{
		BaseEvent: events.NewBaseEvent(events.EventScanStarted, runID),
		Root:      root,
		Recursive: p.cfg.Scan.IsRecursive(),
	})
	log.Info("scan started", "root", root, "workers", p.cfg.Pipeline.Workers)

	workers := max(p.cfg.Pipeline.Workers, 1)
	files := make(chan scanner.MediaFile, max(p.cfg.Pipeline.QueueSize, 1))
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers + 1)

	g.Go(func() error {
		defer close(files)
		for f, err := range sc.Scan(gctx, root) {
			if err != nil {
				return err
			}
			select {
			case files <- f:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			for f := range files {
				if err := gctx.Err(); err != nil {
					return err
				}
				meta := p.normalizer.Normalize(f.Path)
				match := lookups.Resolve(gctx, meta.CleanTitle)
				key := engine.Add(f, meta, match)
				n := processed.Add(1)
				log.Debug("file grouped", "path", f.Path, "group", key.String(), "matched", match.Matched, "confidence", match.Confidence)
				p.publish(gctx, &events.ScanProgress{
					BaseEvent: events.NewBaseEvent(events.EventScanProgress, runID),
					Processed: int(n),
					Path:      f.Path,
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn("scan aborted", "root", root, "error", err)
		return nil, err
	}

	res := &ScanResult{
		RunID:            runID,
		Root:             root,
		Files:            int(processed.Load()),
		Groups:           engine.Sorted(),
		Duplicates:       engine.Duplicates(),
		Warnings:         sc.Warnings(),
		ResolutionErrors: lookups.Errors(),
		Duration:         time.Since(start),
		Engine:           engine,
	}

	p.publish(ctx, &events.ScanCompleted{
		BaseEvent:  events.NewBaseEvent(events.EventScanCompleted, runID),
		Root:       root,
		Files:      res.Files,
		Groups:     len(res.Groups),
		Matched:    res.Matched(),
		Unmatched:  len(res.Groups) - res.Matched(),
		Warnings:   len(res.Warnings),
		DurationMS: res.Duration.Milliseconds(),
	})
	log.Info("scan complete", "root", root, "files", res.Files, "groups", len(res.Groups),
		"matched", res.Matched(), "warnings", len(res.Warnings), "lookup_errors", len(res.ResolutionErrors))
	return res, nil
}
