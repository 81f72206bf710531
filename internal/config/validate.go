// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validModes = map[string]bool{
	"copy": true, "move": true, "hardlink": true,
}

var validSchemes = map[string]bool{
	"standard": true, "minimal": true, "detailed": true,
}

var validParsers = map[string]bool{
	"regex": true, "rls": true,
}

var validProviders = map[string]bool{
	"tmdb": true, "static": true, "none": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validModes[c.Organize.Mode] {
		errs = append(errs, fmt.Sprintf("organize.mode: must be one of copy, move, hardlink; got %q", c.Organize.Mode))
	}
	if !validSchemes[c.Organize.NamingScheme] {
		errs = append(errs, fmt.Sprintf("organize.naming_scheme: must be one of standard, minimal, detailed; got %q", c.Organize.NamingScheme))
	}
	if c.Organize.Template != "" && !strings.Contains(c.Organize.Template, "{episode") {
		errs = append(errs, "organize.template: must contain {episode}")
	}

	if c.Organize.IsSafeMode() && c.Backup.Dir == "" {
		errs = append(errs, "backup.dir: required when safe_mode is enabled")
	}
	if c.Backup.RetentionDays < 0 {
		errs = append(errs, fmt.Sprintf("backup.retention_days: must not be negative, got %d", c.Backup.RetentionDays))
	}

	for _, ext := range append(append([]string{}, c.Scan.VideoExtensions...), c.Scan.SubtitleExtensions...) {
		if strings.TrimSpace(ext) == "" || strings.ContainsAny(ext, `/\`) {
			errs = append(errs, fmt.Sprintf("scan: invalid extension %q", ext))
		}
	}

	if !validParsers[c.Parser.Engine] {
		errs = append(errs, fmt.Sprintf("parser.engine: must be one of regex, rls; got %q", c.Parser.Engine))
	}

	if !validProviders[c.Catalog.Provider] {
		errs = append(errs, fmt.Sprintf("catalog.provider: must be one of tmdb, static, none; got %q", c.Catalog.Provider))
	}
	if c.Catalog.Provider == "tmdb" && c.Catalog.APIKey == "" {
		errs = append(errs, "catalog.api_key: required when provider is tmdb")
	}
	if c.Catalog.Provider == "static" && len(c.Catalog.Titles) == 0 {
		errs = append(errs, "catalog.titles: required when provider is static")
	}
	if c.Catalog.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("catalog.rate_limit: must not be negative, got %d", c.Catalog.RateLimit))
	}

	if c.Pipeline.Workers < 1 || c.Pipeline.Workers > 64 {
		errs = append(errs, fmt.Sprintf("pipeline.workers: must be between 1 and 64, got %d", c.Pipeline.Workers))
	}
	if c.Pipeline.QueueSize < 1 {
		errs = append(errs, fmt.Sprintf("pipeline.queue_size: must be positive, got %d", c.Pipeline.QueueSize))
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format: must be text or json; got %q", c.Log.Format))
	}

	return errs
}
