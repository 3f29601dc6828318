package ingest

import "time"

// Feed reconnect backoff bounds
const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// Log messages
const (
	LogMsgIngestStarted    = "Chain event ingest started"
	LogMsgIngestStopped    = "Chain event ingest stopped"
	LogMsgFeedDisconnected = "Event feed disconnected, reconnecting"
	LogMsgEventIngested    = "Chain event ingested"
)

// Error context strings
const (
	ErrContextFailedToRecord = "failed to record chain event"
)
