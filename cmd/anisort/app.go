package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vmunix/anisort/internal/config"
	"github.com/vmunix/anisort/internal/database"
	"github.com/vmunix/anisort/internal/events"
	"github.com/vmunix/anisort/internal/logging"
	"github.com/vmunix/anisort/internal/pipeline"
)

// app holds everything a command needs to run the pipeline.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *sql.DB
	eventLog *events.EventLog
	bus      *events.Bus
	pipe     *pipeline.Pipeline

	logCloser io.Closer
}

// loadConfig loads the config named by --config, or the first one found in
// the standard locations. Without any config file the defaults are used.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		if errors.Is(err, config.ErrNotFound) {
			return config.Default(), "", nil
		}
		if err != nil {
			return nil, "", err
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// openApp loads the config, applies overrides and wires the pipeline.
// Overrides run before validation so flags can fix an incomplete config.
func openApp(overrides ...func(*config.Config)) (*app, error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(cfg)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &config.ConfigError{Path: path, Errors: errs}
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	log, closer := logging.New(cfg.Log)
	a := &app{cfg: cfg, log: log, logCloser: closer}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.db = db
	a.eventLog = events.NewEventLog(db)
	a.bus = events.NewBus(a.eventLog, log.With("component", "events"))

	cat, err := pipeline.NewCatalog(cfg.Catalog, db, log.With("component", "catalog"))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.pipe, err = pipeline.New(pipeline.Deps{
		Config:  cfg,
		Catalog: cat,
		Bus:     a.bus,
		Logger:  log,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	log.Debug("config loaded", "path", path, "provider", cfg.Catalog.Provider, "parser", cfg.Parser.Engine)
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.bus != nil {
		errs = append(errs, a.bus.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode json: %v\n", err)
	}
}
