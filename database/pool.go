// Package database builds the process-wide PostgreSQL connection pool shared by the
// HTTP handlers and the seeder.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DefaultMaxConns       int32 = 20
	DefaultAcquireTimeout       = 5 * time.Second
)

var (
	// ErrEmptyURL is returned when no connection string was configured
	ErrEmptyURL = errors.New("database URL is empty")
	// ErrAcquireTimeout is returned when no pooled connection became free in time
	ErrAcquireTimeout = errors.New("timed out acquiring a database connection")
)

// PoolConfig configures NewPool
type PoolConfig struct {
	URL            string
	MaxConns       int32
	AcquireTimeout time.Duration
	AppName        string
}

// Pool wraps pgxpool.Pool and bounds how long callers wait for a connection
type Pool struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// PoolStats is a snapshot of pool usage
type PoolStats struct {
	MaxConns             int32 `json:"max_conns"`
	TotalConns           int32 `json:"total_conns"`
	AcquiredConns        int32 `json:"acquired_conns"`
	IdleConns            int32 `json:"idle_conns"`
	AcquireCount         int64 `json:"acquire_count"`
	EmptyAcquireCount    int64 `json:"empty_acquire_count"`
	CanceledAcquireCount int64 `json:"canceled_acquire_count"`
}

// parsePoolConfig turns PoolConfig into a pgxpool config, applying defaults
func parsePoolConfig(cfg PoolConfig) (*pgxpool.Config, time.Duration, error) {
	if cfg.URL == "" {
		return nil, 0, ErrEmptyURL
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolCfg.MaxConns = DefaultMaxConns
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MinConns = 0
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	appName := cfg.AppName
	if appName == "" {
		appName = "nlem-api"
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = appName

	timeout := DefaultAcquireTimeout
	if cfg.AcquireTimeout > 0 {
		timeout = cfg.AcquireTimeout
	}

	return poolCfg, timeout, nil
}

// NewPool constructs the pool. Connections are opened lazily; use Ping to check reachability.
func NewPool(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	poolCfg, timeout, err := parsePoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &Pool{pool: pool, acquireTimeout: timeout}, nil
}

// Acquire takes a connection from the pool, waiting at most the configured acquire timeout.
// The caller must Release it.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	conn, err := p.pool.Acquire(acquireCtx)
	if err != nil {
		return nil, p.acquireError(ctx, acquireCtx, err)
	}
	return conn, nil
}

// acquireError distinguishes our own deadline from the caller's cancellation
func (p *Pool) acquireError(ctx, acquireCtx context.Context, err error) error {
	if ctx.Err() == nil && errors.Is(acquireCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrAcquireTimeout, p.acquireTimeout)
	}
	return fmt.Errorf("failed to acquire connection: %w", err)
}

// Begin acquires a connection and starts a transaction on it. The connection goes back to
// the pool once the transaction is committed or rolled back.
func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &releasingTx{Tx: tx, conn: conn}, nil
}

// Ping checks that a connection can be acquired and the server answers
func (p *Pool) Ping(ctx context.Context) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return conn.Ping(ctx)
}

// Stats returns a snapshot of pool usage
func (p *Pool) Stats() PoolStats {
	s := p.pool.Stat()
	return PoolStats{
		MaxConns:             s.MaxConns(),
		TotalConns:           s.TotalConns(),
		AcquiredConns:        s.AcquiredConns(),
		IdleConns:            s.IdleConns(),
		AcquireCount:         s.AcquireCount(),
		EmptyAcquireCount:    s.EmptyAcquireCount(),
		CanceledAcquireCount: s.CanceledAcquireCount(),
	}
}

// AcquireTimeout returns the configured bound on connection waits
func (p *Pool) AcquireTimeout() time.Duration {
	return p.acquireTimeout
}

// Raw exposes the underlying pgxpool for tooling that needs it (migrations)
func (p *Pool) Raw() *pgxpool.Pool {
	return p.pool
}

// Close closes all connections
func (p *Pool) Close() {
	p.pool.Close()
}

// releasingTx returns its connection to the pool when the transaction ends
type releasingTx struct {
	pgx.Tx
	conn     *pgxpool.Conn
	released bool
}

func (t *releasingTx) Commit(ctx context.Context) error {
	err := t.Tx.Commit(ctx)
	t.release()
	return err
}

func (t *releasingTx) Rollback(ctx context.Context) error {
	err := t.Tx.Rollback(ctx)
	t.release()
	return err
}

func (t *releasingTx) release() {
	if !t.released {
		t.released = true
		t.conn.Release()
	}
}
