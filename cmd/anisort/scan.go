package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/anisort/internal/grouping"
	"github.com/vmunix/anisort/internal/pipeline"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Scan a directory and show how files would be grouped",
	Long: `Scan a directory and show how files would be grouped.

Nothing is moved. Use 'anisort organize' to place the files.`,
	Args: cobra.ExactArgs(1),
	RunE: runScanCmd,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Bool("files", false, "List the files of every group")
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	showFiles, _ := cmd.Flags().GetBool("files")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	stopProgress := startProgress(a)
	res, err := a.pipe.Scan(ctx, args[0])
	stopProgress()
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}
	printScan(res, showFiles)
	return nil
}

func printScan(res *pipeline.ScanResult, showFiles bool) {
	if len(res.Groups) == 0 {
		fmt.Printf("No media files under %s.\n", res.Root)
		return
	}

	fmt.Printf("Groups (%d):\n\n", len(res.Groups))
	fmt.Printf("  %-10s %-45s %-6s %-10s %s\n", "STATUS", "GROUP", "FILES", "SIZE", "MATCH")
	fmt.Println("  " + strings.Repeat("-", 85))
	for _, g := range res.Groups {
		var size uint64
		for _, m := range g.Members {
			size += uint64(max(m.File.SizeBytes, 0))
		}
		fmt.Printf("  %-10s %-45s %-6d %-10s %s\n",
			g.Status,
			truncate(g.Key.String(), 45),
			len(g.Members),
			humanize.Bytes(size),
			matchLabel(g))
		if showFiles {
			for _, m := range g.Members {
				fmt.Printf("      %-9s %s\n", m.Status, m.File.Path)
			}
		}
	}

	if len(res.Duplicates) > 0 {
		fmt.Printf("\nDuplicates (%d):\n", len(res.Duplicates))
		for _, d := range res.Duplicates {
			fmt.Printf("  - %s\n", d.Error())
		}
	}
	if len(res.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(res.Warnings))
		for _, w := range res.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	if len(res.ResolutionErrors) > 0 {
		fmt.Printf("\nCatalog lookups failed (%d):\n", len(res.ResolutionErrors))
		for _, e := range res.ResolutionErrors {
			fmt.Printf("  - %s\n", e)
		}
	}

	fmt.Printf("\n%s files in %d groups (%d matched) in %s\n",
		humanize.Comma(int64(res.Files)), len(res.Groups), res.Matched(), res.Duration.Round(1e6))
}

func matchLabel(g *grouping.Group) string {
	if g.Candidate == nil {
		return "-"
	}
	label := g.Candidate.DisplayTitle
	if g.Candidate.Year > 0 {
		label += fmt.Sprintf(" (%d)", g.Candidate.Year)
	}
	return fmt.Sprintf("%s [%d%%]", label, g.Confidence)
}

// truncate shortens s for display, keeping the start visible.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// signalContext cancels on SIGINT or SIGTERM. Files already being placed
// finish; the rest are reported as skipped.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
