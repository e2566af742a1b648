package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/tabload/internal/retry"
	"github.com/vvka-141/tabload/pkg/tabload"
)

// Connection pool configuration constants
const (
	// A load issues one CREATE and one COPY; more connections buy nothing.
	DefaultMaxConns = 2

	DefaultMaxConnIdleTime = 5 * time.Minute

	DefaultConnectTimeout = 30 * time.Second
)

// Connector opens a connection pool with automatic retry on transient failures.
type Connector struct {
	connString    string
	timeout       time.Duration
	logger        tabload.Logger
	retryExecutor *retry.Executor
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithConnectTimeout bounds each connection attempt.
func WithConnectTimeout(d time.Duration) ConnectorOption {
	return func(c *Connector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetryExecutor replaces the default retry policy.
func WithRetryExecutor(e *retry.Executor) ConnectorOption {
	return func(c *Connector) { c.retryExecutor = e }
}

// NewConnector validates connStr and returns a Connector using
// DefaultRetryMaxAttempts attempts with exponential backoff.
func NewConnector(connStr string, logger tabload.Logger, opts ...ConnectorOption) (*Connector, error) {
	normalized, err := NormalizeConnectionString(connStr)
	if err != nil {
		return nil, err
	}

	c := &Connector{
		connString: normalized,
		timeout:    DefaultConnectTimeout,
		logger:     logger,
		retryExecutor: retry.NewExecutor(
			retry.NewPostgreSQLErrorClassifier(),
			retry.NewExponentialBackoff(tabload.DefaultRetryMaxAttempts,
				retry.WithInitialDelay(250*time.Millisecond),
				retry.WithMaxDelay(5*time.Second),
			),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retryExecutor = c.retryExecutor.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		c.logger.Verbose("Connection attempt %d failed (%v), retrying in %s", attempt+1, err, delay.Round(time.Millisecond))
	})
	return c, nil
}

// Connect establishes a connection pool and verifies it with a ping.
func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(c.connString)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection config: %w", tabload.ErrInvalidConfig, err)
	}
	c.configurePool(poolConfig)

	var pool *pgxpool.Pool
	err = c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		p, err := pgxpool.NewWithConfig(attemptCtx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port, poolConfig.ConnConfig.Database)
		}
		if err := p.Ping(attemptCtx); err != nil {
			p.Close()
			return wrapConnectionError(err, poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port, poolConfig.ConnConfig.Database)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (c *Connector) configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		c.logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

// wrapConnectionError marks err as ErrConnectionFailed and adds a hint for
// the common causes.
func wrapConnectionError(err error, host string, port uint16, database string) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	msg := strings.ToLower(err.Error())

	var hint string
	switch {
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "actively refused"):
		hint = fmt.Sprintf("connection refused to %s (is PostgreSQL running? check: pg_isready -h %s -p %d)", addr, host, port)
	case strings.Contains(msg, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q", host)
	case strings.Contains(msg, "password authentication failed"):
		hint = fmt.Sprintf("password authentication failed for database %q", database)
	case strings.Contains(msg, "does not exist"):
		hint = fmt.Sprintf("database %q does not exist (create it with: createdb %s)", database, database)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		hint = fmt.Sprintf("connection timed out to %s", addr)
	default:
		hint = fmt.Sprintf("failed to connect to %s", addr)
	}
	return fmt.Errorf("%w: %s: %w", tabload.ErrConnectionFailed, hint, err)
}
