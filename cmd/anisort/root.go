package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "anisort",
	Short: "Organize anime episode files into a clean library",
	Long: `anisort - organize anime episode files into a clean library

Scans a directory of downloaded episodes, works out series, season and
episode from each file name, groups the files per series and season and
moves (or copies, or hardlinks) them into a predictable library layout.
Every change is backed up and can be rolled back.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("anisort {{.Version}}\n")
}
