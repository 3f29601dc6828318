package eventlog

// Log messages
const (
	LogMsgEventRecorded     = "Chain event recorded"
	LogMsgDuplicateDelivery = "Duplicate chain event delivery ignored"
	LogMsgPayloadInvalid    = "Chain event payload failed validation"
)

// Error context strings
const (
	ErrContextFailedToInsert = "failed to insert chain event"
)
