package services

import (
	"context"
	"sync"
	"time"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
	"github.com/caldera-ops/opsync/internal/logger"
)

// DefaultPushTimeout bounds one outbound push attempt.
const DefaultPushTimeout = 15 * time.Second

// PushService dispatches best-effort outbound pushes to the external
// mirror. Each push runs as a detached task on its own context:
// cancelling or failing the triggering operation does not cancel the
// push, and push failures are logged and swallowed, never retried and
// never surfaced to the caller.
type PushService struct {
	pusher  driven.OutboundPusher
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewPushService creates a push service. A nil pusher disables
// dispatching entirely.
func NewPushService(pusher driven.OutboundPusher) *PushService {
	return &PushService{
		pusher:  pusher,
		timeout: DefaultPushTimeout,
	}
}

// Dispatch fires one push and returns immediately.
func (s *PushService) Dispatch(collection domain.Collection, rec domain.Record, action domain.PushAction) {
	if s == nil || s.pusher == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.pusher.Push(ctx, collection, rec, action); err != nil {
			logger.Warn("push: %s %s %s failed: %v", action, collection, rec.Key(), err)
		}
	}()
}

// Wait blocks until all dispatched pushes have finished. Used at
// shutdown so in-flight pushes get their chance to complete.
func (s *PushService) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}
