package client

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

type PostgresOptions struct {
	URL        string
	RetryDelay time.Duration
}

// NewPostgresClient blocks until the database answers a ping or ctx is done.
func NewPostgresClient(ctx context.Context, opts PostgresOptions) (*PostgresClient, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	// Настройки пула соединений
	poolConfig.MaxConns = 20
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	var pool *pgxpool.Pool
	err = connectWithRetry(ctx, "postgres", opts.RetryDelay, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			p.Close()
			return fmt.Errorf("failed to ping database: %w", err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &PostgresClient{Pool: pool}, nil
}

func (c *PostgresClient) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// HealthCheck проверяет состояние базы данных
func (c *PostgresClient) HealthCheck(ctx context.Context) error {
	return c.Pool.Ping(ctx)
}
