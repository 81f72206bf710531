package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/anisort/internal/config"
	"github.com/vmunix/anisort/internal/grouping"
	"github.com/vmunix/anisort/internal/pipeline"
)

var errIncomplete = errors.New("some files were not organized")

var organizeCmd = &cobra.Command{
	Use:   "organize <dir>",
	Short: "Scan a directory and place its episodes in the library",
	Long: `Scan a directory and place its episodes in the library.

Files whose destination collides with another file, duplicate episodes
and files without an episode number are reported and left alone.

Examples:
  anisort organize ~/downloads
  anisort organize --dry-run ~/downloads
  anisort organize --mode copy --dest /srv/anime ~/downloads
  anisort organize --group "Sousou No Frieren S01" ~/downloads`,
	Args: cobra.ExactArgs(1),
	RunE: runOrganizeCmd,
}

func init() {
	rootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().BoolP("dry-run", "n", false, "Show destinations without touching files")
	organizeCmd.Flags().String("dest", "", "Destination root (overrides organize.destination_root)")
	organizeCmd.Flags().String("mode", "", "Organize mode: move, copy, hardlink")
	organizeCmd.Flags().String("scheme", "", "Naming scheme: standard, minimal, detailed")
	organizeCmd.Flags().Bool("no-backup", false, "Disable safe mode for this run")
	organizeCmd.Flags().StringArrayP("group", "g", nil, `Only organize this group ("Title S01"), repeatable`)
}

func runOrganizeCmd(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	dest, _ := cmd.Flags().GetString("dest")
	mode, _ := cmd.Flags().GetString("mode")
	scheme, _ := cmd.Flags().GetString("scheme")
	noBackup, _ := cmd.Flags().GetBool("no-backup")
	groupArgs, _ := cmd.Flags().GetStringArray("group")

	keys := make([]grouping.Key, 0, len(groupArgs))
	for _, g := range groupArgs {
		keys = append(keys, parseGroupKey(g))
	}

	a, err := openApp(func(c *config.Config) {
		if dest != "" {
			c.Organize.DestinationRoot = dest
		}
		if mode != "" {
			c.Organize.Mode = strings.ToLower(mode)
		}
		if scheme != "" {
			c.Organize.NamingScheme = strings.ToLower(scheme)
		}
		if noBackup {
			safe := false
			c.Organize.SafeMode = &safe
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	stopProgress := startProgress(a)
	defer stopProgress()

	res, err := a.pipe.Scan(ctx, args[0])
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	report, err := a.pipe.Organize(ctx, res, pipeline.OrganizeOptions{Keys: keys, DryRun: dryRun})
	stopProgress()
	if report != nil {
		if jsonOutput {
			printJSON(report)
		} else {
			printReport(report)
		}
	}
	if err != nil {
		return fmt.Errorf("organize: %w", err)
	}
	if report.Failed > 0 {
		return errIncomplete
	}
	return nil
}

// parseGroupKey reads "Title S02" as a group key. A missing season suffix
// means season 1.
func parseGroupKey(s string) grouping.Key {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, " "); i > 0 {
		suffix := s[i+1:]
		if len(suffix) > 1 && (suffix[0] == 'S' || suffix[0] == 's') {
			if n, err := strconv.Atoi(suffix[1:]); err == nil {
				return grouping.Key{Title: strings.TrimSpace(s[:i]), Season: n}
			}
		}
	}
	return grouping.Key{Title: s, Season: 1}
}

func printReport(r *pipeline.Report) {
	if r.DryRun {
		fmt.Printf("Plan (%d files):\n\n", len(r.Entries))
	} else {
		fmt.Printf("Results (%d files):\n\n", len(r.Entries))
	}
	for _, e := range r.Entries {
		switch {
		case e.Destination != "" && (e.Status == grouping.MemberOrganized || e.Status == grouping.MemberPending):
			suffix := ""
			if e.Noop {
				suffix = " (already in place)"
			}
			fmt.Printf("  %-9s %s\n  %9s -> %s%s\n", e.Status, e.Path, "", e.Destination, suffix)
		default:
			fmt.Printf("  %-9s %s\n  %9s    %s\n", e.Status, e.Path, "", e.Reason)
		}
	}

	fmt.Println()
	if r.DryRun {
		fmt.Printf("Planned: %d  Skipped: %d  Conflicts: %d  Duplicates: %d  Failed: %d\n",
			r.Planned, r.Skipped, r.Conflicted, r.Duplicated, r.Failed)
		return
	}
	fmt.Printf("Organized: %d  Skipped: %d  Conflicts: %d  Duplicates: %d  Failed: %d  (%s)\n",
		r.Organized, r.Skipped, r.Conflicted, r.Duplicated, r.Failed, r.Duration.Round(1e6))
	if r.Canceled {
		fmt.Println("Run was interrupted; remaining files were skipped.")
	}
	fmt.Printf("Run ID: %s\n", r.RunID)
}
