// Command opsync synchronises external records into a local store.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/caldera-ops/opsync/internal/adapters/driven/config/file"
	"github.com/caldera-ops/opsync/internal/adapters/driven/push/httppush"
	"github.com/caldera-ops/opsync/internal/adapters/driven/storage/sqlite"
	"github.com/caldera-ops/opsync/internal/adapters/driving/cli"
	"github.com/caldera-ops/opsync/internal/connectors/resthttp"
	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driving"
	"github.com/caldera-ops/opsync/internal/core/services"
	"github.com/caldera-ops/opsync/internal/logger"
	"github.com/caldera-ops/opsync/internal/normalisers/record"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	loader, err := file.NewLoader(os.Getenv("OPSYNC_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer loader.Close()
	config := loader.Config()

	store, err := sqlite.NewStore(config.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	push := services.NewPushService(newPusher(config))
	defer push.Wait()

	wiring := &wiring{store: store, push: push}
	wiring.rebuild(config)

	// Config edits swap in fresh pipelines; the scheduler sees them
	// through the runner indirection.
	if err := loader.Watch(func(updated *file.Config) {
		wiring.rebuild(updated)
	}); err != nil {
		logger.Warn("config watch unavailable: %v", err)
	}

	return cli.Execute()
}

// newPusher builds the outbound pusher, or nil when not configured.
func newPusher(config *file.Config) *httppush.Pusher {
	if config.Push.Endpoint == "" {
		return nil
	}
	return httppush.New(httppush.Config{
		Endpoint:    config.Push.Endpoint,
		BearerToken: config.Push.BearerToken,
	})
}

// wiring builds and swaps the per-collection service graph.
type wiring struct {
	store *sqlite.Store
	push  *services.PushService

	mu     sync.Mutex
	runner *dynamicRunner
}

// rebuild constructs coordinators from the configuration and injects
// them into the CLI. Stores and the push service survive rebuilds.
func (w *wiring) rebuild(config *file.Config) {
	w.mu.Lock()
	defer w.mu.Unlock()

	records := w.store.RecordStore()
	guards := w.store.GuardStore()

	coordinators := make(map[domain.Collection]driving.ReviewCoordinator, len(config.Collections))
	ordered := make([]*services.Coordinator, 0, len(config.Collections))

	for name, collectionConfig := range config.Collections {
		collection := domain.Collection(name)

		fetcher := resthttp.New(resthttp.Config{
			Endpoint:    collectionConfig.Endpoint,
			Method:      collectionConfig.Method,
			BearerToken: collectionConfig.BearerToken,
			Timeout:     collectionConfig.Timeout(),
		})

		pipeline := &services.Pipeline{
			Collection: collection,
			Fetcher:    fetcher,
			Normaliser: record.New(collectionConfig.Aliases, collectionConfig.Defaults),
			Classifier: services.NewClassifier(records, collectionConfig.CompareFields),
			Committer:  services.NewCommitter(records),
		}

		coordinator := services.NewCoordinator(pipeline, guards)
		coordinators[collection] = coordinator
		ordered = append(ordered, coordinator)
	}

	autoSync := services.NewAutoSync(ordered...)
	if w.runner == nil {
		w.runner = &dynamicRunner{}
	}
	w.runner.set(autoSync)

	cli.SetServices(cli.Services{
		Coordinators: coordinators,
		AutoSync:     w.runner,
		Records:      services.NewRecordService(records, w.push),
		Scheduler: services.NewScheduler(services.SchedulerConfig{
			Enabled:       config.Scheduler.Enabled,
			CheckInterval: config.Scheduler.CheckInterval(),
		}, w.runner),
		Guards: guards,
	})
}

// dynamicRunner lets a running scheduler pick up rebuilt coordinators.
type dynamicRunner struct {
	mu      sync.RWMutex
	current driving.AutoSyncRunner
}

var _ driving.AutoSyncRunner = (*dynamicRunner)(nil)

func (r *dynamicRunner) set(runner driving.AutoSyncRunner) {
	r.mu.Lock()
	r.current = runner
	r.mu.Unlock()
}

func (r *dynamicRunner) get() driving.AutoSyncRunner {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *dynamicRunner) Run(ctx context.Context, collection domain.Collection) (*domain.AutoSyncResult, error) {
	return r.get().Run(ctx, collection)
}

func (r *dynamicRunner) RunAll(ctx context.Context) ([]domain.AutoSyncResult, error) {
	return r.get().RunAll(ctx)
}
