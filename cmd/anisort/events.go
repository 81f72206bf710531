package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/anisort/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events",
	Args:  cobra.NoArgs,
	RunE:  runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().String("run", "", "Only show events of one run")
	eventsCmd.Flags().Duration("since", 0, "Only show events newer than this (e.g. 24h)")
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")
	since, _ := cmd.Flags().GetDuration("since")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var evs []events.RawEvent
	switch {
	case runID != "":
		evs, err = a.eventLog.ForRun(runID)
	case since > 0:
		evs, err = a.eventLog.Since(time.Now().Add(-since))
	default:
		evs, err = a.eventLog.Recent(limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	if jsonOutput {
		printJSON(evs)
		return nil
	}
	if len(evs) == 0 {
		fmt.Println("No events")
		return nil
	}

	registry := events.DefaultRegistry()
	fmt.Printf("Events (%d):\n\n", len(evs))
	fmt.Printf("  %-16s %-26s %-36s %s\n", "TIME", "TYPE", "RUN", "DETAILS")
	fmt.Println("  " + strings.Repeat("-", 110))
	for _, raw := range evs {
		details := ""
		if e, err := registry.Unmarshal(raw); err == nil {
			details = eventDetails(e)
		}
		fmt.Printf("  %-16s %-26s %-36s %s\n", humanize.Time(raw.OccurredAt), raw.EventType, raw.RunID, details)
	}
	return nil
}

// eventDetails renders the payload of a decoded event as one short line.
func eventDetails(e events.Event) string {
	switch e := e.(type) {
	case *events.ScanStarted:
		return e.Root
	case *events.ScanProgress:
		return fmt.Sprintf("%d %s", e.Processed, filepath.Base(e.Path))
	case *events.ScanCompleted:
		return fmt.Sprintf("%d files, %d groups (%d matched)", e.Files, e.Groups, e.Matched)
	case *events.OrganizeProgress:
		return fmt.Sprintf("[%d/%d] %s", e.Current, e.Total, filepath.Base(e.Path))
	case *events.FileOrganized:
		if e.Noop {
			return filepath.Base(e.Destination) + " (already in place)"
		}
		return fmt.Sprintf("%s %s", e.Mode, filepath.Base(e.Destination))
	case *events.FileSkipped:
		return fmt.Sprintf("%s: %s", filepath.Base(e.Source), e.Reason)
	case *events.FileFailed:
		return fmt.Sprintf("%s at %s: %s", filepath.Base(e.Source), e.Stage, truncate(e.Reason, 60))
	case *events.RunCompleted:
		return fmt.Sprintf("%d organized, %d skipped, %d failed", e.Organized, e.Skipped, e.Failed)
	case *events.RollbackCompleted:
		return e.OperationID
	case *events.BackupsPurged:
		return fmt.Sprintf("%d backups", e.Count)
	default:
		return ""
	}
}
