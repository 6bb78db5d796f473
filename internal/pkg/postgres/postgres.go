// Package postgres provides PostgreSQL connection pool construction.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config contains PostgreSQL connection settings.
type Config struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	MinConns       int
	MaxConns       int
	ConnectTimeout time.Duration
}

// URL assembles a pgx connection URL from the individual settings.
func (c Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// NewPool builds a connection pool from cfg. Connections are opened
// lazily on first use; a successful return means the settings parsed
// and the pool object exists, not that the database is reachable.
// Callers that need a verified round-trip should use a readiness check.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return pool, nil
}
