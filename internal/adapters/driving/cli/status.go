package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state per collection",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if coordinators == nil {
		return errors.New("sync service not configured")
	}
	ctx := context.Background()

	for _, name := range collectionNames() {
		collection := domain.Collection(name)
		coordinator := coordinators[collection]

		cmd.Println(titleStyle.Render(name))
		cmd.Printf("  state: %s\n", coordinator.State())
		if err := coordinator.LastError(); err != nil {
			cmd.Printf("  last error: %s\n", errorStyle.Render(err.Error()))
		}
		if set := coordinator.Classification(); set != nil {
			cmd.Printf("  pending review: %d new, %d updated\n", len(set.New), len(set.Updated))
		}

		guard, err := guardStore.Get(ctx, collection)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			cmd.Println("  last sync: never")
		case err != nil:
			cmd.Printf("  last sync: unknown (%v)\n", err)
		default:
			cmd.Printf("  last sync: %s (%s, %d records)\n",
				guard.LastSyncDate, guard.LastSyncType, guard.UpdatedCount)
		}
		cmd.Println()
	}
	return nil
}
