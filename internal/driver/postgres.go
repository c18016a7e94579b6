package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOptions configures the postgres driver. A bare string is the DSN.
type PostgresOptions struct {
	DSN               string        `mapstructure:"dsn" validate:"required"`
	MaxConns          int32         `mapstructure:"max_conns" validate:"gte=0"`
	MinConns          int32         `mapstructure:"min_conns" validate:"gte=0"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	QueryTimeout      time.Duration `mapstructure:"query_timeout"`
	SkipPing          bool          `mapstructure:"skip_ping"`
}

// poolConfig maps options onto a pgxpool configuration.
func (o PostgresOptions) poolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(o.DSN)
	if err != nil {
		return nil, err
	}
	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 {
		cfg.MinConns = o.MinConns
	}
	if o.MinConns > 0 && o.MaxConns > 0 && o.MinConns > o.MaxConns {
		return nil, fmt.Errorf("min_conns %d exceeds max_conns %d", o.MinConns, o.MaxConns)
	}
	if o.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = o.MaxConnLifetime
	}
	if o.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = o.MaxConnIdleTime
	}
	if o.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = o.HealthCheckPeriod
	}
	if o.QueryTimeout > 0 {
		cfg.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%dms", o.QueryTimeout.Milliseconds())
	}
	return cfg, nil
}

// Postgres returns a pinged *pgxpool.Pool.
func Postgres(ctx context.Context, options any) (any, error) {
	var o PostgresOptions
	if err := decode(options, "dsn", &o); err != nil {
		return nil, optionsError("postgres", err)
	}
	cfg, err := o.poolConfig()
	if err != nil {
		return nil, optionsError("postgres", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if o.SkipPing {
		return pool, nil
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
