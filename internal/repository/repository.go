package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB exposes connection liveness for the health endpoint.
type DB interface {
	Ping(ctx context.Context) error
}

// NewPool creates a PostgreSQL connection pool and verifies connectivity.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
