// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Valid(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
[organize]
destination_root = "` + tmp + `"
mode = "copy"

[pipeline]
workers = 8
`
	os.WriteFile(cfgPath, []byte(content), 0644)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Organize.Mode != "copy" {
		t.Errorf("expected mode copy, got %s", cfg.Organize.Mode)
	}
	if cfg.Pipeline.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Pipeline.Workers)
	}
}

func TestLoad_MissingEnvVar(t *testing.T) {
	os.Unsetenv("ANISORT_TEST_MISSING_KEY")
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
[catalog]
provider = "tmdb"
api_key = "${ANISORT_TEST_MISSING_KEY}"
`
	os.WriteFile(cfgPath, []byte(content), 0644)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
	if !strings.Contains(err.Error(), "ANISORT_TEST_MISSING_KEY") {
		t.Errorf("expected ANISORT_TEST_MISSING_KEY in error, got %v", err)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
[organize]
mode = "symlink"
`
	os.WriteFile(cfgPath, []byte(content), 0644)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if !strings.Contains(err.Error(), "organize.mode") {
		t.Errorf("expected organize.mode in error, got %v", err)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	os.WriteFile(cfgPath, []byte("[organize]\n"), 0644)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Organize.Mode != "move" {
		t.Errorf("expected default mode move, got %s", cfg.Organize.Mode)
	}
	if cfg.Organize.NamingScheme != "standard" {
		t.Errorf("expected default scheme standard, got %s", cfg.Organize.NamingScheme)
	}
	if !cfg.Organize.IsSafeMode() {
		t.Error("expected safe mode by default")
	}
	if !cfg.Scan.IsRecursive() {
		t.Error("expected recursive scan by default")
	}
	if cfg.Backup.Dir != "/data/anisort/backups" {
		t.Errorf("expected default backup dir, got %s", cfg.Backup.Dir)
	}
	if cfg.Backup.Retention() != 30*24*time.Hour {
		t.Errorf("expected 30 day retention, got %v", cfg.Backup.Retention())
	}
	if cfg.Catalog.CacheTTL != 24*time.Hour {
		t.Errorf("expected 24h cache ttl, got %v", cfg.Catalog.CacheTTL)
	}
}

func TestLoadWithoutValidation(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
[pipeline]
workers = 500
`
	os.WriteFile(cfgPath, []byte(content), 0644)

	cfg, err := LoadWithoutValidation(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.Workers != 500 {
		t.Errorf("expected 500 workers, got %d", cfg.Pipeline.Workers)
	}
}

func TestLoad_EnvVarDefault(t *testing.T) {
	os.Unsetenv("ANISORT_TEST_OPTIONAL_ROOT")
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
[organize]
destination_root = "${ANISORT_TEST_OPTIONAL_ROOT:-/srv/anime}"
`
	os.WriteFile(cfgPath, []byte(content), 0644)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Organize.DestinationRoot != "/srv/anime" {
		t.Errorf("expected /srv/anime, got %s", cfg.Organize.DestinationRoot)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	os.Unsetenv("ANISORT_TEST_DOTENV_KEY")
	t.Cleanup(func() { os.Unsetenv("ANISORT_TEST_DOTENV_KEY") })

	tmp := t.TempDir()
	os.WriteFile(filepath.Join(tmp, ".env"), []byte("ANISORT_TEST_DOTENV_KEY=from-dotenv\n"), 0644)
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
[catalog]
provider = "tmdb"
api_key = "${ANISORT_TEST_DOTENV_KEY}"
`
	os.WriteFile(cfgPath, []byte(content), 0644)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Catalog.APIKey != "from-dotenv" {
		t.Errorf("expected api key from .env, got %q", cfg.Catalog.APIKey)
	}
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	t.Setenv("ANISORT_TEST_DOTENV_SET", "from-env")

	tmp := t.TempDir()
	os.WriteFile(filepath.Join(tmp, ".env"), []byte("ANISORT_TEST_DOTENV_SET=from-dotenv\n"), 0644)
	cfgPath := filepath.Join(tmp, "config.toml")
	os.WriteFile(cfgPath, []byte("[catalog]\nprovider = \"tmdb\"\napi_key = \"${ANISORT_TEST_DOTENV_SET}\"\n"), 0644)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Catalog.APIKey != "from-env" {
		t.Errorf("expected environment to win, got %q", cfg.Catalog.APIKey)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "reading config") {
		t.Errorf("expected reading config error, got %v", err)
	}
}
