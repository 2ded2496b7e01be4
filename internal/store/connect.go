package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/contacts/internal/config"
	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "contacts-normalizer"

// newBackOff is replaced in tests.
var newBackOff = func() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.Multiplier = 2.0
	exp.MaxInterval = 5 * time.Second
	exp.RandomizationFactor = 0.5
	exp.Reset()
	return exp
}

// Connect opens a pool for cfg and waits until the database answers a ping,
// retrying with exponential backoff for at most cfg.ConnectTimeout.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	pcfg.MaxConns = int32(cfg.MaxConns)
	pcfg.MinConns = int32(cfg.MinConns)
	pcfg.MaxConnLifetime = cfg.MaxConnLifetime
	pcfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	if pcfg.ConnConfig.RuntimeParams == nil {
		pcfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	if _, ok := pcfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		pcfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := retryPing(ctx, pool.Ping, cfg.ConnectTimeout); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// retryPing calls ping until it succeeds, ctx ends or maxElapsed passes.
func retryPing(ctx context.Context, ping func(context.Context) error, maxElapsed time.Duration) error {
	attempt := 0
	op := func() (struct{}, error) {
		attempt++
		err := ping(ctx)
		if err != nil {
			slog.Warn("database not ready", "attempt", attempt, "error", err)
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	return err
}
