package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the automatic sync scheduler in the foreground",
	Long: `Starts the scheduler loop. Each tick attempts the automatic sync for
every configured collection; the daily guard keeps actual syncs to at
most one per UTC day. Stops on SIGINT or SIGTERM.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cmd.Println("Shutting down...")
		scheduler.Stop()
		cancel()
	}()

	cmd.Println("Scheduler running; press Ctrl-C to stop.")
	if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
