package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/suivest/suivest-go/internal/domain"
)

// EventLog defines the interface for the durable chain event log
type EventLog interface {
	// InsertEvent appends an event to the log. Returns false (and no error)
	// when the (vault_id, tx_hash, event_type) key already exists, so
	// at-least-once delivery dedupes to a no-op.
	InsertEvent(ctx context.Context, evt *domain.ChainEvent) (bool, error)

	// DequeueUnprocessed returns up to limit unprocessed events for the
	// vault, oldest first by insert sequence.
	DequeueUnprocessed(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.ChainEvent, error)

	// VaultsWithUnprocessed lists vault IDs that currently have unprocessed
	// events, for the projector's scan loop.
	VaultsWithUnprocessed(ctx context.Context) ([]uuid.UUID, error)

	// HasUnprocessedAtOrBelow reports whether any unprocessed event for the
	// vault sits at or below the given block height. Used by the lifecycle
	// manager to check the projector has drained up to a seed's height.
	HasUnprocessedAtOrBelow(ctx context.Context, vaultID uuid.UUID, blockHeight int64) (bool, error)
}
