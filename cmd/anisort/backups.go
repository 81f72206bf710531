package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/anisort/internal/catalog"
	"github.com/vmunix/anisort/internal/organizer"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Manage organize backups",
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded operations",
	Args:  cobra.NoArgs,
	RunE:  runBackupsList,
}

var backupsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete backups and events older than backup.retention_days",
	Long: `Delete committed backups and event history older than
backup.retention_days, and drop expired catalog cache entries.`,
	Args:  cobra.NoArgs,
	RunE:  runBackupsPurge,
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <operation-id>...",
	Short: "Undo organize operations and restore the original files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRollback,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	backupsCmd.AddCommand(backupsListCmd)
	backupsCmd.AddCommand(backupsPurgeCmd)
	backupsListCmd.Flags().Bool("pending", false, "Only show operations left unfinished by an interrupted run")
	rootCmd.AddCommand(rollbackCmd)
}

func runBackupsList(cmd *cobra.Command, args []string) error {
	pending, _ := cmd.Flags().GetBool("pending")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var ops []organizer.Operation
	if pending {
		ops, err = a.pipe.PendingBackups()
	} else {
		ops, err = a.pipe.Backups()
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(withIDs(ops))
		return nil
	}
	if len(ops) == 0 {
		fmt.Println("No recorded operations.")
		return nil
	}

	fmt.Printf("Operations (%d):\n\n", len(ops))
	fmt.Printf("  %-36s %-10s %-9s %-9s %-14s %s\n", "ID", "STATUS", "MODE", "SIZE", "WHEN", "DESTINATION")
	fmt.Println("  " + strings.Repeat("-", 110))
	for _, op := range ops {
		fmt.Printf("  %-36s %-10s %-9s %-9s %-14s %s\n",
			op.ID,
			op.Status,
			op.Mode,
			humanize.Bytes(uint64(max(op.FileSize, 0))),
			humanize.Time(op.Timestamp),
			truncate(op.DestinationPath, 60))
	}
	return nil
}

func runBackupsPurge(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	n, err := a.pipe.Purge(cmd.Context())
	if err != nil {
		return err
	}
	evs, err := a.eventLog.Prune(a.cfg.Backup.Retention())
	if err != nil {
		return err
	}
	cached, err := catalog.NewCache(a.db).Prune(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]int64{"backups": int64(n), "events": evs, "cache_entries": cached})
		return nil
	}
	fmt.Printf("Purged %d backups and %s events older than %d days, %s expired cache entries.\n",
		n, humanize.Comma(evs), a.cfg.Backup.RetentionDays, humanize.Comma(cached))
	return nil
}

func runRollback(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var rolled []organizer.Operation
	var failed int
	for _, id := range args {
		op, err := a.pipe.Rollback(cmd.Context(), id)
		if err != nil {
			failed++
			fmt.Printf("  failed    %s: %v\n", id, err)
			continue
		}
		rolled = append(rolled, *op)
		if !jsonOutput {
			fmt.Printf("  restored  %s\n  %9s <- %s\n", op.SourcePath, "", op.DestinationPath)
		}
	}
	if jsonOutput {
		printJSON(withIDs(rolled))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d rollbacks failed", failed, len(args))
	}
	return nil
}

// operationJSON adds the ID, which the store keeps as the record key.
type operationJSON struct {
	ID string `json:"id"`
	organizer.Operation
}

func withIDs(ops []organizer.Operation) []operationJSON {
	out := make([]operationJSON, len(ops))
	for i, op := range ops {
		out[i] = operationJSON{ID: op.ID, Operation: op}
	}
	return out
}
