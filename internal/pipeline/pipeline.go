// Package pipeline wires scanning, parsing, title resolution, grouping,
// naming and organizing into scan and organize runs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/anisort/internal/catalog"
	"github.com/vmunix/anisort/internal/config"
	"github.com/vmunix/anisort/internal/events"
	"github.com/vmunix/anisort/internal/naming"
	"github.com/vmunix/anisort/internal/organizer"
	"github.com/vmunix/anisort/internal/scanner"
	"github.com/vmunix/anisort/pkg/release"
)

// Deps are the collaborators of a Pipeline. Only Config is required.
type Deps struct {
	Config  *config.Config
	Catalog catalog.Catalog  // nil: every title stays unmatched
	Parser  release.Parser   // nil: chosen by config
	Store   *organizer.Store // nil: opened from the backup dir on first organize
	Bus     *events.Bus      // nil: no events
	Logger  *slog.Logger
}

// Pipeline runs scans and organize passes. Settings are read once in New.
type Pipeline struct {
	cfg        *config.Config
	normalizer *release.Normalizer
	catalog    catalog.Catalog
	synth      *naming.Synthesizer
	scheme     naming.Scheme
	mode       organizer.Mode
	store      *organizer.Store
	bus        *events.Bus
	log        *slog.Logger
}

// New validates the settings it depends on and builds a Pipeline.
func New(deps Deps) (*Pipeline, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("pipeline: config is required")
	}
	cfg := deps.Config

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	parser := deps.Parser
	if parser == nil {
		var err error
		if parser, err = NewParser(cfg.Parser.Engine); err != nil {
			return nil, err
		}
	}

	mode, err := organizer.ParseMode(cfg.Organize.Mode)
	if err != nil {
		return nil, err
	}
	scheme, err := naming.ParseScheme(cfg.Organize.NamingScheme)
	if err != nil {
		return nil, err
	}
	synth, err := naming.NewSynthesizer(cfg.Organize.Template)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:        cfg,
		normalizer: release.NewNormalizer(parser),
		catalog:    deps.Catalog,
		synth:      synth,
		scheme:     scheme,
		mode:       mode,
		store:      deps.Store,
		bus:        deps.Bus,
		log:        log.With("component", "pipeline"),
	}, nil
}

// Normalize parses one file name with the configured parser.
func (p *Pipeline) Normalize(filename string) release.Metadata {
	return p.normalizer.Normalize(filename)
}

func (p *Pipeline) scannerOptions() scanner.Options {
	opts := scanner.DefaultOptions()
	opts.Recursive = p.cfg.Scan.IsRecursive()
	opts.IncludeSubtitles = p.cfg.Scan.IncludeSubtitles
	if len(p.cfg.Scan.VideoExtensions) > 0 {
		opts.VideoExtensions = p.cfg.Scan.VideoExtensions
	}
	if len(p.cfg.Scan.SubtitleExtensions) > 0 {
		opts.SubtitleExtensions = p.cfg.Scan.SubtitleExtensions
	}
	if p.cfg.Scan.PruneDirs != nil {
		opts.PruneDirs = p.cfg.Scan.PruneDirs
	}
	opts.Logger = p.log
	return opts
}

func (p *Pipeline) publish(ctx context.Context, e events.Event) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, e); err != nil {
		p.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}

func (p *Pipeline) organizer() (*organizer.Organizer, error) {
	if p.store == nil {
		store, err := organizer.OpenStore(p.cfg.Backup.Dir)
		if err != nil {
			return nil, fmt.Errorf("%w: backup store: %v", ErrResourceUnavailable, err)
		}
		p.store = store
	}
	return organizer.New(p.store, p.log), nil
}
