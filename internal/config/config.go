package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/suivest/suivest-go/internal/accountant"
	"github.com/suivest/suivest-go/internal/selector"
)

// Config holds the application configuration
type Config struct {
	Port        int    `validate:"gt=0,lte=65535"`
	LogLevel    string `validate:"oneof=debug info warn warning error"`
	LogFormat   string `validate:"oneof=json text"`
	Environment string `validate:"required"`
	ServiceName string `validate:"required"`
	Version     string `validate:"required"`

	DBUser            string        `validate:"required"`
	DBPassword        string        `validate:"required"`
	DBHost            string        `validate:"required"`
	DBPort            string        `validate:"required"`
	DBName            string        `validate:"required"`
	DBMaxConns        int           `validate:"gt=0"`
	DBMinConns        int           `validate:"gte=0"`
	DBMaxConnIdleTime time.Duration `validate:"gt=0"`
	DBMaxConnLifetime time.Duration `validate:"gt=0"`

	// Chain bridge
	ChainRPCURL           string        `validate:"required,url"`
	ChainRequestTimeout   time.Duration `validate:"gt=0"`
	ChainFeedPollInterval time.Duration `validate:"gt=0"`
	GatewayMaxAttempts    int           `validate:"gt=0"`
	GatewayBaseDelay      time.Duration `validate:"gt=0"`

	// Engine scheduling
	ProjectorInterval  time.Duration `validate:"gt=0"`
	LifecycleInterval  time.Duration `validate:"gt=0"`
	ReconcileInterval  time.Duration `validate:"gt=0"`
	ProjectorBatchSize int           `validate:"gt=0"`

	// Round lifecycle
	RoundDuration     time.Duration `validate:"gt=0"`
	RandomnessTimeout time.Duration `validate:"gt=0"`

	// Prize draw
	PrizeSplit        selector.PrizeSplit           `validate:"required,min=1"`
	StreakMultipliers accountant.MultiplierSchedule // empty means no multiplier
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:   getEnv("LOG_FORMAT", DefaultLogFormat),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),
		ServiceName: getEnv("SERVICE_NAME", DefaultServiceName),
		Version:     getEnv("VERSION", DefaultVersion),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", DefaultDBName),
		ChainRPCURL: getEnv("CHAIN_RPC_URL", DefaultChainRPCURL),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.DBMaxConns, err = getEnvInt("DB_MAX_CONNS", DefaultDBMaxConns); err != nil {
		return nil, err
	}
	if cfg.DBMinConns, err = getEnvInt("DB_MIN_CONNS", DefaultDBMinConns); err != nil {
		return nil, err
	}
	if cfg.DBMaxConnIdleTime, err = getEnvDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime); err != nil {
		return nil, err
	}
	if cfg.DBMaxConnLifetime, err = getEnvDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime); err != nil {
		return nil, err
	}
	if cfg.ChainRequestTimeout, err = getEnvDuration("CHAIN_REQUEST_TIMEOUT", DefaultChainRequestTimeout); err != nil {
		return nil, err
	}
	if cfg.ChainFeedPollInterval, err = getEnvDuration("CHAIN_FEED_POLL_INTERVAL", DefaultChainFeedPollInterval); err != nil {
		return nil, err
	}
	if cfg.GatewayMaxAttempts, err = getEnvInt("GATEWAY_MAX_ATTEMPTS", DefaultGatewayMaxAttempts); err != nil {
		return nil, err
	}
	if cfg.GatewayBaseDelay, err = getEnvDuration("GATEWAY_BASE_DELAY", DefaultGatewayBaseDelay); err != nil {
		return nil, err
	}
	if cfg.ProjectorBatchSize, err = getEnvInt("PROJECTOR_BATCH_SIZE", DefaultProjectorBatchSize); err != nil {
		return nil, err
	}
	if cfg.ProjectorInterval, err = getEnvDuration("PROJECTOR_INTERVAL", DefaultProjectorInterval); err != nil {
		return nil, err
	}
	if cfg.LifecycleInterval, err = getEnvDuration("LIFECYCLE_INTERVAL", DefaultLifecycleInterval); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = getEnvDuration("RECONCILE_INTERVAL", DefaultReconcileInterval); err != nil {
		return nil, err
	}
	if cfg.RoundDuration, err = getEnvDuration("ROUND_DURATION", DefaultRoundDuration); err != nil {
		return nil, err
	}
	if cfg.RandomnessTimeout, err = getEnvDuration("RANDOMNESS_TIMEOUT", DefaultRandomnessTimeout); err != nil {
		return nil, err
	}

	cfg.PrizeSplit, err = selector.ParsePrizeSplit(getEnv("PRIZE_SPLIT", DefaultPrizeSplit))
	if err != nil {
		return nil, fmt.Errorf("invalid PRIZE_SPLIT: %w", err)
	}

	cfg.StreakMultipliers, err = accountant.ParseMultiplierSchedule(getEnv("STREAK_MULTIPLIERS", DefaultStreakMultipliers))
	if err != nil {
		return nil, fmt.Errorf("invalid STREAK_MULTIPLIERS: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
