package gateway

import (
	"context"

	"github.com/suivest/suivest-go/internal/domain"
)

// EventHandler receives one raw chain event from the feed. Returning an error
// tells the feed the event was not durably accepted; the feed must redeliver
// it (at-least-once, dedup happens at the event log).
type EventHandler func(ctx context.Context, evt *domain.ChainEvent) error

// Feed is the gateway's event subscription: a stream of raw chain events for
// all vaults the engine tracks. Implementations reconnect on stream errors
// and may redeliver events already seen.
type Feed interface {
	// Subscribe blocks, delivering events to handler until ctx is cancelled.
	Subscribe(ctx context.Context, handler EventHandler) error
}
