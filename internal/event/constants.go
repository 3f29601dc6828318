package event

// EventSchemaVersion is the current version of the event envelope format
const EventSchemaVersion = "1.0"

// LogMsgHandlerErrorFormat formats aggregated handler failures from Publish
const LogMsgHandlerErrorFormat = "%d handler(s) failed for event %s: %v"
