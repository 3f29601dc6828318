package config

import "time"

// Default configuration values
const (
	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultEnvironment = "dev"
	DefaultServiceName = "suivest-engine"
	DefaultVersion     = "dev"
	DefaultDBName      = "suivest"

	DefaultProjectorBatchSize = 100

	DefaultDBMaxConns        = 10
	DefaultDBMinConns        = 2
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute

	DefaultChainRPCURL           = "http://localhost:9000"
	DefaultChainRequestTimeout   = 15 * time.Second
	DefaultChainFeedPollInterval = 2 * time.Second
	DefaultGatewayMaxAttempts    = 4
	DefaultGatewayBaseDelay      = 500 * time.Millisecond

	DefaultProjectorInterval = 2 * time.Second
	DefaultLifecycleInterval = 5 * time.Second
	DefaultReconcileInterval = 5 * time.Minute

	DefaultRoundDuration     = 7 * 24 * time.Hour
	DefaultRandomnessTimeout = 30 * time.Minute

	// DefaultPrizeSplit gives 1st/2nd/3rd 50%/30%/20% of the prize pool,
	// in basis points
	DefaultPrizeSplit = "5000,3000,2000"

	// DefaultStreakMultipliers matches the documented schedule:
	// weeks 1-2 get 1.0x, 3-5 get 1.1x, 6-10 get 1.2x, 11+ get 1.3x
	DefaultStreakMultipliers = "3:1.1,6:1.2,11:1.3"
)
