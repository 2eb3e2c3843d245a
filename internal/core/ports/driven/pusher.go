package driven

import (
	"context"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

// OutboundPusher propagates one local mutation to the external source.
//
// The contract is best-effort: callers detach the call from their own
// lifecycle, never retry, and log failures without surfacing them. The
// external source is a reporting mirror, not the authority.
type OutboundPusher interface {
	// Push sends the full record plus an action tag.
	Push(ctx context.Context, collection domain.Collection, record domain.Record, action domain.PushAction) error
}
