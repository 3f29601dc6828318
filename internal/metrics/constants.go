package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Notification metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Projection metric names
const (
	MetricNameChainEventsIngested     = "chain_events_ingested_total"
	MetricNameChainEventsProcessed    = "chain_events_processed_total"
	MetricNameChainEventsFailed       = "chain_events_failed_total"
	MetricNameEventProcessingDuration = "chain_event_processing_duration_seconds"
)

// Round metric names
const (
	MetricNameRoundsLocked    = "rounds_locked_total"
	MetricNameRoundsFinalized = "rounds_finalized_total"
	MetricNameRoundsStuck     = "rounds_stuck_total"
)

// Business metric names
const (
	MetricNameDepositsConfirmed    = "deposits_confirmed_total"
	MetricNameWithdrawalsConfirmed = "withdrawals_confirmed_total"
	MetricNameDepositVolume        = "deposit_volume_base_units_total"
	MetricNameWithdrawalVolume     = "withdrawal_volume_base_units_total"
	MetricNamePrizesDistributed    = "prizes_distributed_base_units_total"
	MetricNamePrizesClaimed        = "prizes_claimed_total"
	MetricNameVaultsHalted         = "vaults_halted_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Notification metric help text
const (
	HelpTextEventsPublished    = "Total number of domain notifications published"
	HelpTextEventHandlerErrors = "Total number of notification handler errors"
)

// Projection metric help text
const (
	HelpTextChainEventsIngested     = "Total number of chain events received at the log boundary"
	HelpTextChainEventsProcessed    = "Total number of chain events projected onto the ledger"
	HelpTextChainEventsFailed       = "Total number of chain events recorded as failed"
	HelpTextEventProcessingDuration = "Chain event projection latency in seconds"
)

// Round metric help text
const (
	HelpTextRoundsLocked    = "Total number of rounds locked"
	HelpTextRoundsFinalized = "Total number of rounds finalized"
	HelpTextRoundsStuck     = "Total number of rounds flagged stuck awaiting randomness"
)

// Business metric help text
const (
	HelpTextDepositsConfirmed    = "Total number of confirmed deposits"
	HelpTextWithdrawalsConfirmed = "Total number of confirmed withdrawals"
	HelpTextDepositVolume        = "Total deposited volume in token base units"
	HelpTextWithdrawalVolume     = "Total withdrawn volume in token base units"
	HelpTextPrizesDistributed    = "Total prize volume distributed in token base units"
	HelpTextPrizesClaimed        = "Total number of prizes claimed"
	HelpTextVaultsHalted         = "Total number of vaults halted by reconciliation"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelOutcome   = "outcome"
)

// Outcome label values for chain event ingestion
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ProcessingLatencyBuckets covers chain event projection, which is a handful
// of row writes inside one transaction
var ProcessingLatencyBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgMetricsRecorded = "Metrics recorded for notification"
)
