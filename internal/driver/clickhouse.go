package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseOptions configures the clickhouse driver. A bare string is a
// DSN; otherwise Addr lists host:port pairs.
type ClickHouseOptions struct {
	DSN         string        `mapstructure:"dsn" validate:"required_without=Addr"`
	Addr        []string      `mapstructure:"addr" validate:"omitempty,dive,hostname_port"`
	Database    string        `mapstructure:"database"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Compress    bool          `mapstructure:"compress"`
	SkipPing    bool          `mapstructure:"skip_ping"`
}

func (o ClickHouseOptions) clientOptions() (*clickhouse.Options, error) {
	if o.DSN != "" {
		return clickhouse.ParseDSN(o.DSN)
	}
	opt := &clickhouse.Options{
		Addr: o.Addr,
		Auth: clickhouse.Auth{
			Database: o.Database,
			Username: o.Username,
			Password: o.Password,
		},
		DialTimeout: 10 * time.Second,
	}
	if o.DialTimeout > 0 {
		opt.DialTimeout = o.DialTimeout
	}
	if o.Compress {
		opt.Compression = &clickhouse.Compression{Method: clickhouse.CompressionLZ4}
	}
	return opt, nil
}

// ClickHouse returns a pinged clickhouse connection (driver.Conn).
func ClickHouse(ctx context.Context, options any) (any, error) {
	var o ClickHouseOptions
	if err := decode(options, "dsn", &o); err != nil {
		return nil, optionsError("clickhouse", err)
	}
	opt, err := o.clientOptions()
	if err != nil {
		return nil, optionsError("clickhouse", err)
	}
	conn, err := clickhouse.Open(opt)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if o.SkipPing {
		return conn, nil
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return conn, nil
}
