package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

// countingRunner records RunAll invocations.
type countingRunner struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRunner) Run(ctx context.Context, collection domain.Collection) (*domain.AutoSyncResult, error) {
	return &domain.AutoSyncResult{Collection: collection}, nil
}

func (r *countingRunner) RunAll(ctx context.Context) ([]domain.AutoSyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return nil, nil
}

func (r *countingRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestSchedulerRunsImmediatelyOnStart(t *testing.T) {
	runner := &countingRunner{}
	scheduler := NewScheduler(SchedulerConfig{Enabled: true, CheckInterval: time.Hour}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		return runner.callCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())
	cancel()
	<-done
}

func TestSchedulerTicksRepeatedly(t *testing.T) {
	runner := &countingRunner{}
	scheduler := NewScheduler(SchedulerConfig{Enabled: true, CheckInterval: 20 * time.Millisecond}, runner)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		return runner.callCount() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, scheduler.Stop())
	<-done
}

func TestSchedulerDisabledDoesNothing(t *testing.T) {
	runner := &countingRunner{}
	scheduler := NewScheduler(SchedulerConfig{Enabled: false, CheckInterval: time.Millisecond}, runner)

	require.NoError(t, scheduler.Start(context.Background()))
	assert.Zero(t, runner.callCount())
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	runner := &countingRunner{}
	scheduler := NewScheduler(SchedulerConfig{Enabled: true, CheckInterval: time.Hour}, runner)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- scheduler.Start(ctx) }()

	require.Eventually(t, func() bool {
		return runner.callCount() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, scheduler.Stop())
	require.NoError(t, scheduler.Stop())
	<-done
}
