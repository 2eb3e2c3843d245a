package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

var autosyncCmd = &cobra.Command{
	Use:   "autosync [collection]",
	Short: "Run the automatic sync path once",
	Long: `Runs the guard-gated automatic sync. A collection that already synced
today (manually or automatically) is skipped. With no argument, every
configured collection is attempted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAutosync,
}

func init() {
	rootCmd.AddCommand(autosyncCmd)
}

func runAutosync(cmd *cobra.Command, args []string) error {
	if autoSyncRunner == nil {
		return errors.New("autosync service not configured")
	}
	ctx := context.Background()

	if len(args) == 1 {
		collection, err := parseCollection(args[0])
		if err != nil {
			return err
		}
		result, err := autoSyncRunner.Run(ctx, collection)
		if err != nil {
			return fmt.Errorf("autosync failed: %w", err)
		}
		printAutoSyncResult(cmd, *result)
		return nil
	}

	results, err := autoSyncRunner.RunAll(ctx)
	for _, result := range results {
		printAutoSyncResult(cmd, result)
	}
	if err != nil {
		return fmt.Errorf("autosync failed: %w", err)
	}
	return nil
}

func printAutoSyncResult(cmd *cobra.Command, result domain.AutoSyncResult) {
	if !result.Synced {
		cmd.Printf("%s: skipped (%s)\n", result.Collection, result.Reason)
		return
	}
	cmd.Printf("%s: synced, %d created, %d updated", result.Collection, result.Created, result.Updated)
	if result.Skipped > 0 {
		cmd.Printf(", %d rows skipped", result.Skipped)
	}
	cmd.Println()
}
