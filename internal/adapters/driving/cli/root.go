// Package cli implements the opsync command line interface.
package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
	"github.com/caldera-ops/opsync/internal/core/ports/driving"
	"github.com/caldera-ops/opsync/internal/core/services"
	"github.com/caldera-ops/opsync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute runs.
var (
	coordinators   map[domain.Collection]driving.ReviewCoordinator
	autoSyncRunner driving.AutoSyncRunner
	recordService  *services.RecordService
	scheduler      *services.Scheduler
	guardStore     driven.GuardStore
)

// Services bundles everything the CLI commands need.
type Services struct {
	Coordinators map[domain.Collection]driving.ReviewCoordinator
	AutoSync     driving.AutoSyncRunner
	Records      *services.RecordService
	Scheduler    *services.Scheduler
	Guards       driven.GuardStore
}

// SetServices wires the command handlers to their services.
func SetServices(s Services) {
	coordinators = s.Coordinators
	autoSyncRunner = s.AutoSync
	recordService = s.Records
	scheduler = s.Scheduler
	guardStore = s.Guards
}

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "opsync",
	Short: "Synchronise external records into the local store",
	Long: `opsync fetches records from configured external sources, normalises
them into a canonical shape, and reconciles them against the local
store. Manual syncs pause for review before anything is written;
automatic syncs run at most once per UTC day per collection.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// parseCollection resolves a command argument to a configured
// collection.
func parseCollection(arg string) (domain.Collection, error) {
	collection := domain.Collection(arg)
	if _, ok := coordinators[collection]; !ok {
		return "", fmt.Errorf("%w: %s (configured: %v)",
			domain.ErrUnknownCollection, arg, collectionNames())
	}
	return collection, nil
}

// collectionNames lists configured collections in stable order.
func collectionNames() []string {
	names := make([]string, 0, len(coordinators))
	for collection := range coordinators {
		names = append(names, string(collection))
	}
	sort.Strings(names)
	return names
}
