package main

import (
	"github.com/suivest/suivest-go/internal/config"
	"github.com/suivest/suivest-go/internal/logger"
)

// initLogger configures the global slog logger from application config
func initLogger(cfg *config.Config) {
	addSource := cfg.Environment != "production"
	logCfg := logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		cfg.ServiceName,
		cfg.Version,
		cfg.Environment,
		addSource,
	)
	logger.InitLogger(logCfg)
}
