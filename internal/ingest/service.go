package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/suivest/suivest-go/internal/domain"
	"github.com/suivest/suivest-go/internal/eventlog"
	"github.com/suivest/suivest-go/internal/gateway"
	"github.com/suivest/suivest-go/internal/logger"
)

// Service pumps the gateway's event feed into the durable event log. It is
// the only consumer of the feed; everything downstream reads from the log.
type Service interface {
	// Run subscribes to the feed and records events until ctx is cancelled,
	// reconnecting with backoff on stream errors.
	Run(ctx context.Context)

	// Ingest records one raw event. Exposed for tests and replay tooling.
	Ingest(ctx context.Context, evt *domain.ChainEvent) error
}

type service struct {
	feed gateway.Feed
	log  eventlog.Service
}

// NewService creates a new ingest service
func NewService(feed gateway.Feed, log eventlog.Service) Service {
	return &service{feed: feed, log: log}
}

func (s *service) Run(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgIngestStarted)

	delay := reconnectBaseDelay
	for {
		err := s.feed.Subscribe(ctx, s.Ingest)
		if ctx.Err() != nil {
			log.Info(LogMsgIngestStopped)
			return
		}
		if err != nil {
			log.Error(LogMsgFeedDisconnected, "error", err, "reconnect_in", delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			log.Info(LogMsgIngestStopped)
			return
		}
		if delay < reconnectMaxDelay {
			delay *= 2
		}
	}
}

// Ingest records the event. Returning an error makes the feed redeliver, so
// only durable-store failures propagate; duplicates are a success.
func (s *service) Ingest(ctx context.Context, evt *domain.ChainEvent) error {
	outcome, err := s.log.Record(ctx, evt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrContextFailedToRecord, err)
	}

	logger.FromContext(ctx).Debug(LogMsgEventIngested, "tx_hash", evt.TxHash, "type", evt.EventType, "outcome", outcome)
	return nil
}
