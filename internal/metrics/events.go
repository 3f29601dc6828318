package metrics

import (
	"context"

	"github.com/suivest/suivest-go/internal/event"
	"github.com/suivest/suivest-go/internal/logger"
)

// EventMetricsCollector subscribes to domain notifications and records
// business metrics from their typed payloads.
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all notification types
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.DepositConfirmed,
		event.WithdrawalConfirmed,
		event.EventFailed,
		event.RoundStarted,
		event.RoundLocked,
		event.RoundFinalized,
		event.PrizeClaimed,
		event.VaultHalted,
		event.RoundStuck,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent records metrics for a notification
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch payload := evt.Payload.(type) {
	case event.LedgerEntryPayloadV1:
		switch evt.Type {
		case event.DepositConfirmed:
			DepositsConfirmed.Inc()
			DepositVolume.Add(float64(payload.Amount))
		case event.WithdrawalConfirmed:
			WithdrawalsConfirmed.Inc()
			WithdrawalVolume.Add(float64(payload.Amount))
		}

	case event.RoundFinalizedPayloadV1:
		for _, w := range payload.Winners {
			PrizesDistributed.Add(float64(w.PrizeAmount))
		}

	case event.PrizeClaimedPayloadV1:
		PrizesClaimed.Inc()

	case event.VaultHaltedPayloadV1:
		VaultsHalted.Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
