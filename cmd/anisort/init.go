package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/anisort/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Long: `Write a starter config file.

Without a path the config is written to the XDG config location
(~/.config/anisort/config.toml). With --interactive the library root,
organize mode and catalog are asked for instead of using the template.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitCmd,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing config")
	initCmd.Flags().BoolP("interactive", "i", false, "Prompt for the main settings")
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")

	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if !interactive {
		if err := config.WriteDefault(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Wrote %s\n", path)
		fmt.Println("Set ANISORT_LIBRARY and TMDB_API_KEY (or edit the file), then run 'anisort config test'.")
		return nil
	}

	fmt.Println("anisort setup")
	fmt.Println()
	cfg := promptConfig(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
	if errs := cfg.Validate(); len(errs) > 0 {
		printConfigErrors(&config.ConfigError{Path: path, Errors: errs})
		return fmt.Errorf("configuration invalid")
	}
	if err := cfg.Write(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("\nWrote %s\n", path)
	return nil
}

// promptConfig asks for the settings most setups change.
func promptConfig(r *bufio.Reader, w io.Writer) *config.Config {
	cfg := config.Default()
	cfg.Organize.DestinationRoot = promptRequired(r, w, "Library root")
	cfg.Organize.Mode = promptWithDefault(r, w, "Organize mode (move, copy, hardlink)", cfg.Organize.Mode)
	cfg.Organize.NamingScheme = promptWithDefault(r, w, "Naming scheme (standard, minimal, detailed)", cfg.Organize.NamingScheme)
	cfg.Backup.Dir = promptWithDefault(r, w, "Backup directory", cfg.Backup.Dir)

	if key := promptWithDefault(r, w, "TMDB API key (empty to skip title lookup)", ""); key != "" {
		cfg.Catalog.Provider = "tmdb"
		cfg.Catalog.APIKey = key
		cfg.Catalog.RateLimit = 40
	}
	return cfg
}

// promptWithDefault shows a prompt with default value in brackets.
// Returns the user's input, or the default if input is empty.
func promptWithDefault(r *bufio.Reader, w io.Writer, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, defaultVal)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

// promptRequired prompts until a non-empty value is provided.
func promptRequired(r *bufio.Reader, w io.Writer, label string) string {
	for {
		fmt.Fprintf(w, "%s: ", label)
		input, err := r.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			return input
		}
		if err != nil {
			return ""
		}
		fmt.Fprintln(w, "  Value required")
	}
}
