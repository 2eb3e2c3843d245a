package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/caldera-ops/opsync/internal/adapters/driving/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review [collection]",
	Short: "Review and commit changes interactively",
	Long: `Opens the interactive review screen for a collection. The screen
analyzes on start; changes can then be committed, discarded, or
re-analyzed without leaving the terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	if coordinators == nil {
		return errors.New("sync service not configured")
	}
	collection, err := parseCollection(args[0])
	if err != nil {
		return err
	}
	return tui.Run(context.Background(), coordinators[collection])
}
