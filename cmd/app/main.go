package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suivest/suivest-go/internal/config"
	"github.com/suivest/suivest-go/internal/database"
	"github.com/suivest/suivest-go/internal/database/postgres"
	"github.com/suivest/suivest-go/internal/event"
	"github.com/suivest/suivest-go/internal/eventlog"
	"github.com/suivest/suivest-go/internal/gateway"
	"github.com/suivest/suivest-go/internal/ingest"
	"github.com/suivest/suivest-go/internal/lifecycle"
	"github.com/suivest/suivest-go/internal/metrics"
	"github.com/suivest/suivest-go/internal/projector"
	"github.com/suivest/suivest-go/internal/reconcile"
	"github.com/suivest/suivest-go/internal/server"
	"github.com/suivest/suivest-go/internal/worker"
)

const shutdownTimeout = 15 * time.Second

const reconcileWorkers = 2

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connString := cfg.GetDBConnString()
	if err := database.Migrate(connString); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	dbPool, err := database.NewPool(ctx, connString, database.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Repositories
	eventLogRepo := postgres.NewEventLogRepository(dbPool)
	ledgerRepo := postgres.NewLedgerRepository(dbPool)
	roundsRepo := postgres.NewRoundsRepository(dbPool)

	// In-process notification bus with business metrics attached
	eventBus := event.NewMemoryBus()
	if err := metrics.NewEventMetricsCollector().Register(eventBus); err != nil {
		slog.Error("Failed to register metrics collector", "error", err)
		os.Exit(1)
	}

	// Chain bridge client, wrapped with retry on transient errors
	rpcClient := gateway.NewRPCClient(cfg.ChainRPCURL, cfg.ChainRequestTimeout, cfg.ChainFeedPollInterval)
	gw := gateway.NewRetryingGateway(rpcClient, cfg.GatewayMaxAttempts, cfg.GatewayBaseDelay)

	// Engine services. The projector and lifecycle manager share one keyed
	// mutex so work on the same vault never interleaves.
	vaultLocks := worker.NewKeyedMutex()
	logService := eventlog.NewService(eventLogRepo)
	ingestService := ingest.NewService(rpcClient, logService)
	projectorService := projector.NewService(logService, ledgerRepo, eventBus, vaultLocks, cfg.ProjectorBatchSize, cfg.ProjectorInterval)
	lifecycleManager := lifecycle.NewManager(roundsRepo, ledgerRepo, logService, gw, eventBus, vaultLocks, lifecycle.Options{
		Interval:          cfg.LifecycleInterval,
		RoundDuration:     cfg.RoundDuration,
		RandomnessTimeout: cfg.RandomnessTimeout,
		PrizeSplit:        cfg.PrizeSplit,
		StreakMultipliers: cfg.StreakMultipliers,
	})

	reconcilePool := worker.NewPool(ctx, reconcileWorkers, reconcileWorkers*2)
	reconcilePool.Start()
	reconcileService := reconcile.NewService(ledgerRepo, roundsRepo, eventBus, reconcilePool, cfg.ReconcileInterval)

	go ingestService.Run(ctx)
	go projectorService.Run(ctx)
	go lifecycleManager.Run(ctx)
	go reconcileService.Run(ctx)

	srv := server.NewServer(cfg.Port, dbPool, ledgerRepo, roundsRepo)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	reconcilePool.Stop()
	slog.Info("Shutdown complete")
}
