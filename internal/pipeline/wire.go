package pipeline

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vmunix/anisort/internal/catalog"
	"github.com/vmunix/anisort/internal/config"
	"github.com/vmunix/anisort/pkg/release"
)

// NewParser returns the parser named by engine ("regex" or "rls").
func NewParser(engine string) (release.Parser, error) {
	switch strings.ToLower(engine) {
	case "", "regex":
		return release.NewRegexParser(), nil
	case "rls":
		return release.NewRLSParser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, engine)
	}
}

// NewCatalog builds the configured catalog. With a database the catalog is
// wrapped in the persistent lookup cache. Provider "none" returns nil.
func NewCatalog(cfg config.CatalogConfig, db *sql.DB, log *slog.Logger) (catalog.Catalog, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "static":
		return catalog.NewStaticTitles(cfg.Titles), nil
	case "tmdb":
		opts := []catalog.Option{
			catalog.WithCacheTTL(cfg.CacheTTL),
			catalog.WithRateLimit(cfg.RateLimit, 10*time.Second),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, catalog.WithBaseURL(cfg.BaseURL))
		}
		var c catalog.Catalog = catalog.NewTMDB(cfg.APIKey, opts...)
		if db != nil {
			c = catalog.NewCached(c, catalog.NewCache(db), cfg.CacheTTL, log)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
