// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
type Config struct {
	Organize OrganizeConfig `toml:"organize"`
	Backup   BackupConfig   `toml:"backup"`
	Scan     ScanConfig     `toml:"scan"`
	Parser   ParserConfig   `toml:"parser"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

type OrganizeConfig struct {
	DestinationRoot string `toml:"destination_root"`
	Mode            string `toml:"mode"`          // copy, move or hardlink
	NamingScheme    string `toml:"naming_scheme"` // standard, minimal or detailed
	Template        string `toml:"template"`      // Replaces the standard scheme when set
	SafeMode        *bool  `toml:"safe_mode"`     // Default: true
}

// IsSafeMode returns whether originals are backed up before mutation.
// Defaults to true if not explicitly set.
func (c OrganizeConfig) IsSafeMode() bool {
	if c.SafeMode == nil {
		return true
	}
	return *c.SafeMode
}

type BackupConfig struct {
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Retention returns the retention period as a duration.
func (c BackupConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

type ScanConfig struct {
	Recursive          *bool    `toml:"recursive"` // Default: true
	IncludeSubtitles   bool     `toml:"include_subtitles"`
	VideoExtensions    []string `toml:"video_extensions"`
	SubtitleExtensions []string `toml:"subtitle_extensions"`
	PruneDirs          []string `toml:"prune_dirs"`
}

// IsRecursive returns whether subdirectories are scanned.
// Defaults to true if not explicitly set.
func (c ScanConfig) IsRecursive() bool {
	if c.Recursive == nil {
		return true
	}
	return *c.Recursive
}

type ParserConfig struct {
	Engine string `toml:"engine"` // regex or rls
}

type CatalogConfig struct {
	Provider  string        `toml:"provider"` // tmdb, static or none
	APIKey    string        `toml:"api_key"`
	Language  string        `toml:"language"`
	BaseURL   string        `toml:"base_url"`
	CacheTTL  time.Duration `toml:"cache_ttl"`
	RateLimit int           `toml:"rate_limit"` // Requests per 10 seconds, 0 disables
	Titles    []string      `toml:"titles"`     // Known titles for the static provider
}

type PipelineConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // text or json
	File       string `toml:"file"`   // Optional rotating log file
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cerr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying
// defaults but skipping validation and missing-variable checks.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, nil, err
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, missing, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Organize.Mode == "" {
		c.Organize.Mode = "move"
	}
	if c.Organize.NamingScheme == "" {
		c.Organize.NamingScheme = "standard"
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(DataDir(), "backups")
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 30
	}
	if c.Parser.Engine == "" {
		c.Parser.Engine = "regex"
	}
	if c.Catalog.Provider == "" {
		c.Catalog.Provider = "none"
	}
	if c.Catalog.Language == "" {
		c.Catalog.Language = "en-US"
	}
	if c.Catalog.CacheTTL == 0 {
		c.Catalog.CacheTTL = 24 * time.Hour
	}
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = 4
	}
	if c.Pipeline.QueueSize == 0 {
		c.Pipeline.QueueSize = 64
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(DataDir(), "anisort.db")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}

// loadDotEnv exports variables from an optional .env file. Variables that
// are already set win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces ${VAR} references with environment values and
// returns the names of variables that could not be resolved. Unresolved
// references are left in place.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				missing = append(missing, name+": "+strings.TrimSpace(arg))
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return out, missing
}
