package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suivest/suivest-go/internal/logger"
)

// Pool is the subset of pgxpool.Pool the rest of the engine depends on
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// PoolOptions carries the connection pool tuning knobs from configuration
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
}

// NewPool opens a pgx connection pool with the given tuning and verifies
// connectivity before returning it.
func NewPool(ctx context.Context, connString string, opts PoolOptions) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}
	applyPoolOptions(poolCfg, opts)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	logger.FromContext(ctx).Info(LogMsgDatabaseConnected,
		"max_conns", poolCfg.MaxConns,
		"min_conns", poolCfg.MinConns,
		"max_conn_idle_time", poolCfg.MaxConnIdleTime,
		"max_conn_lifetime", poolCfg.MaxConnLifetime,
	)
	return pool, nil
}

func applyPoolOptions(poolCfg *pgxpool.Config, opts PoolOptions) {
	if opts.MaxConns > math.MaxInt32 {
		opts.MaxConns = math.MaxInt32
	}
	if opts.MaxConns > 0 {
		poolCfg.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns <= 0 {
		opts.MinConns = DefaultMinConnections
	}
	if int64(opts.MinConns) > int64(poolCfg.MaxConns) {
		opts.MinConns = int(poolCfg.MaxConns)
	}
	poolCfg.MinConns = int32(opts.MinConns)

	if opts.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}
}
