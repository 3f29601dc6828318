package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suivest/suivest-go/internal/domain"
)

// EventLogRepository implements the chain event log for PostgreSQL
type EventLogRepository struct {
	db *pgxpool.Pool
}

// NewEventLogRepository creates a new EventLogRepository
func NewEventLogRepository(db *pgxpool.Pool) *EventLogRepository {
	return &EventLogRepository{db: db}
}

const eventColumns = `seq, vault_id, event_type, tx_hash, block_height, payload, payload_valid, processed, received_at, processed_at`

// InsertEvent appends an event, returning false on a duplicate
// (vault_id, tx_hash, event_type) key.
func (r *EventLogRepository) InsertEvent(ctx context.Context, evt *domain.ChainEvent) (bool, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO chain_events (vault_id, event_type, tx_hash, block_height, payload, payload_valid, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (vault_id, tx_hash, event_type) DO NOTHING
		RETURNING seq`,
		evt.VaultID, string(evt.EventType), evt.TxHash, evt.BlockHeight, []byte(evt.Payload), evt.PayloadValid, evt.ReceivedAt,
	)

	if err := row.Scan(&evt.Seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert chain event: %w", err)
	}
	return true, nil
}

// DequeueUnprocessed returns up to limit unprocessed events for the vault in
// insert-sequence order.
func (r *EventLogRepository) DequeueUnprocessed(ctx context.Context, vaultID uuid.UUID, limit int) ([]domain.ChainEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM chain_events
		WHERE vault_id = $1 AND NOT processed
		ORDER BY seq
		LIMIT $2`,
		vaultID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []domain.ChainEvent
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *evt)
	}
	return events, rows.Err()
}

// VaultsWithUnprocessed lists vault IDs with pending events
func (r *EventLogRepository) VaultsWithUnprocessed(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT vault_id FROM chain_events WHERE NOT processed`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vaults with unprocessed events: %w", err)
	}
	defer rows.Close()

	var vaults []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan vault id: %w", err)
		}
		vaults = append(vaults, id)
	}
	return vaults, rows.Err()
}

// HasUnprocessedAtOrBelow reports whether any unprocessed event at or below
// blockHeight exists for the vault
func (r *EventLogRepository) HasUnprocessedAtOrBelow(ctx context.Context, vaultID uuid.UUID, blockHeight int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM chain_events
			WHERE vault_id = $1 AND NOT processed AND block_height <= $2
		)`,
		vaultID, blockHeight,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check unprocessed events: %w", err)
	}
	return exists, nil
}

func scanEvent(row pgx.Row) (*domain.ChainEvent, error) {
	var evt domain.ChainEvent
	var eventType string
	var payload []byte
	var processedAt pgtype.Timestamptz

	err := row.Scan(
		&evt.Seq, &evt.VaultID, &eventType, &evt.TxHash, &evt.BlockHeight,
		&payload, &evt.PayloadValid, &evt.Processed, &evt.ReceivedAt, &processedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan chain event: %w", err)
	}

	evt.EventType = domain.EventType(eventType)
	evt.Payload = payload
	evt.ProcessedAt = ptrTime(processedAt)
	return &evt, nil
}
