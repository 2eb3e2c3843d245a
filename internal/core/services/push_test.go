package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

// recordingPusher captures pushes and optionally fails them.
type recordingPusher struct {
	mu     sync.Mutex
	pushes []pushedCall
	err    error
}

type pushedCall struct {
	collection domain.Collection
	key        string
	action     domain.PushAction
}

func (p *recordingPusher) Push(ctx context.Context, collection domain.Collection, rec domain.Record, action domain.PushAction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushedCall{collection: collection, key: rec.Key(), action: action})
	return p.err
}

func (p *recordingPusher) calls() []pushedCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]pushedCall, len(p.pushes))
	copy(out, p.pushes)
	return out
}

func TestPushDispatchDelivers(t *testing.T) {
	pusher := &recordingPusher{}
	service := NewPushService(pusher)

	service.Dispatch(domain.CollectionTickets, domain.Record{NaturalKey: "T-1"}, domain.PushCreate)
	service.Wait()

	calls := pusher.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, domain.CollectionTickets, calls[0].collection)
	assert.Equal(t, "T-1", calls[0].key)
	assert.Equal(t, domain.PushCreate, calls[0].action)
}

func TestPushDispatchSwallowsFailures(t *testing.T) {
	pusher := &recordingPusher{err: errors.New("mirror unreachable")}
	service := NewPushService(pusher)

	// Dispatch never surfaces the failure; it returns immediately and
	// the error is only logged.
	service.Dispatch(domain.CollectionTickets, domain.Record{NaturalKey: "T-1"}, domain.PushUpdate)
	service.Wait()

	assert.Len(t, pusher.calls(), 1)
}

func TestPushDispatchNilPusherIsNoop(t *testing.T) {
	service := NewPushService(nil)
	service.Dispatch(domain.CollectionTickets, domain.Record{NaturalKey: "T-1"}, domain.PushDelete)
	service.Wait()
}

func TestPushDispatchNilServiceIsNoop(t *testing.T) {
	var service *PushService
	service.Dispatch(domain.CollectionTickets, domain.Record{NaturalKey: "T-1"}, domain.PushDelete)
	service.Wait()
}
