package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Notification Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Projection Metrics
var (
	ChainEventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameChainEventsIngested,
			Help: HelpTextChainEventsIngested,
		},
		[]string{LabelEventType, LabelOutcome},
	)

	ChainEventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameChainEventsProcessed,
			Help: HelpTextChainEventsProcessed,
		},
		[]string{LabelEventType},
	)

	ChainEventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameChainEventsFailed,
			Help: HelpTextChainEventsFailed,
		},
		[]string{LabelEventType},
	)

	EventProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameEventProcessingDuration,
			Help:    HelpTextEventProcessingDuration,
			Buckets: ProcessingLatencyBuckets,
		},
		[]string{LabelEventType},
	)
)

// Round Metrics
var (
	RoundsLocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRoundsLocked,
			Help: HelpTextRoundsLocked,
		},
	)

	RoundsFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRoundsFinalized,
			Help: HelpTextRoundsFinalized,
		},
	)

	RoundsStuck = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRoundsStuck,
			Help: HelpTextRoundsStuck,
		},
	)
)

// Business Metrics
var (
	DepositsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDepositsConfirmed,
			Help: HelpTextDepositsConfirmed,
		},
	)

	WithdrawalsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameWithdrawalsConfirmed,
			Help: HelpTextWithdrawalsConfirmed,
		},
	)

	DepositVolume = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDepositVolume,
			Help: HelpTextDepositVolume,
		},
	)

	WithdrawalVolume = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameWithdrawalVolume,
			Help: HelpTextWithdrawalVolume,
		},
	)

	PrizesDistributed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePrizesDistributed,
			Help: HelpTextPrizesDistributed,
		},
	)

	PrizesClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePrizesClaimed,
			Help: HelpTextPrizesClaimed,
		},
	)

	VaultsHalted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameVaultsHalted,
			Help: HelpTextVaultsHalted,
		},
	)
)
