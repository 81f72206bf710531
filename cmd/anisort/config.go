package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/anisort/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config syntax, required fields, and environment variable substitution without touching any files.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show which config file would be used",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			fmt.Println(configPath)
			return nil
		}
		path, err := config.Discover()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

func printConfigErrors(e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Println("Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Printf("  - %s\n", m)
		}
		fmt.Println()
	}

	if len(e.Errors) > 0 {
		fmt.Println("Validation errors:")
		for _, err := range e.Errors {
			fmt.Printf("  - %s\n", err)
		}
		fmt.Println()
	}
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Library:    %s\n", orNone(cfg.Organize.DestinationRoot))
	fmt.Printf("  Organize:   %s, %s naming", cfg.Organize.Mode, cfg.Organize.NamingScheme)
	if cfg.Organize.Template != "" {
		fmt.Printf(" (template %q)", cfg.Organize.Template)
	}
	fmt.Println()

	if cfg.Organize.IsSafeMode() {
		fmt.Printf("  Backups:    %s (keep %d days)\n", cfg.Backup.Dir, cfg.Backup.RetentionDays)
	} else {
		fmt.Println("  Backups:    disabled")
	}
	fmt.Printf("  Parser:     %s\n", cfg.Parser.Engine)

	catalog := cfg.Catalog.Provider
	switch cfg.Catalog.Provider {
	case "tmdb":
		catalog += fmt.Sprintf(" (%s, cache %s)", cfg.Catalog.Language, cfg.Catalog.CacheTTL)
	case "static":
		catalog += fmt.Sprintf(" (%d titles)", len(cfg.Catalog.Titles))
	}
	fmt.Printf("  Catalog:    %s\n", catalog)

	exts := []string{"video"}
	if cfg.Scan.IncludeSubtitles {
		exts = append(exts, "subtitles")
	}
	fmt.Printf("  Scan:       %s, recursive=%t\n", strings.Join(exts, " + "), cfg.Scan.IsRecursive())
	fmt.Printf("  Workers:    %d\n", cfg.Pipeline.Workers)
	fmt.Printf("  Database:   %s\n", cfg.Database.Path)
	fmt.Printf("  Log:        %s/%s", cfg.Log.Level, cfg.Log.Format)
	if cfg.Log.File != "" {
		fmt.Printf(" -> %s", cfg.Log.File)
	}
	fmt.Println()
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
