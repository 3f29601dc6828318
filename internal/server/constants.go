package server

import "time"

// URL path parameters
const (
	ParamVaultID = "vaultID"
	ParamUserID  = "userID"
	ParamRoundID = "roundID"

	QueryParamLimit = "limit"
)

// Pagination bounds for history endpoints
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Current-round cache. Round state changes only on lifecycle transitions, so
// a short TTL keeps the hot path off the database without serving stale
// finalization results for long.
const (
	RoundCacheSize = 256
	RoundCacheTTL  = 5 * time.Second
)

// Health check values
const (
	StatusHealthy     = "healthy"
	StatusReady       = "ready"
	StatusUnavailable = "unavailable"

	ReadyzPingTimeout = 2 * time.Second
)

// HTTP headers
const (
	HeaderContentType         = "Content-Type"
	HeaderXContentTypeOptions = "X-Content-Type-Options"
	HeaderXFrameOptions       = "X-Frame-Options"
	HeaderReferrerPolicy      = "Referrer-Policy"
	HeaderCacheControl        = "Cache-Control"

	ContentTypeJSON           = "application/json"
	ContentTypeOptionsNoSniff = "nosniff"
	FrameOptionsDeny          = "DENY"
	ReferrerPolicyNoReferrer  = "no-referrer"
	CacheControlNoStore       = "no-store"
)

// Log messages
const (
	LogMsgServerStarting   = "HTTP server starting"
	LogMsgRequestStarted   = "Request started"
	LogMsgRequestCompleted = "Request completed"
	LogMsgRequestFailed    = "Request failed"
)

// Error messages returned to clients
const (
	ErrMsgInvalidID           = "invalid id"
	ErrMsgInternalError       = "internal server error"
	ErrMsgDatabaseUnavailable = "database unavailable"
)
