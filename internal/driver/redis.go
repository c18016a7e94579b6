package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the redis driver. A bare string is the URL.
type RedisOptions struct {
	URL          string        `mapstructure:"url" validate:"required_without=Addr"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db" validate:"gte=0"`
	PoolSize     int           `mapstructure:"pool_size" validate:"gte=0"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// SkipPing returns the client without a round trip to the server.
	SkipPing bool `mapstructure:"skip_ping"`
}

// Redis returns a pinged *redis.Client.
func Redis(ctx context.Context, options any) (any, error) {
	var o RedisOptions
	if err := decode(options, "url", &o); err != nil {
		return nil, optionsError("redis", err)
	}
	opt := &redis.Options{Addr: o.Addr}
	if o.URL != "" {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, optionsError("redis", err)
		}
		opt = parsed
	}
	if o.Password != "" {
		opt.Password = o.Password
	}
	if o.DB != 0 {
		opt.DB = o.DB
	}
	if o.PoolSize > 0 {
		opt.PoolSize = o.PoolSize
	}
	if o.DialTimeout > 0 {
		opt.DialTimeout = o.DialTimeout
	}
	if o.ReadTimeout > 0 {
		opt.ReadTimeout = o.ReadTimeout
	}
	if o.WriteTimeout > 0 {
		opt.WriteTimeout = o.WriteTimeout
	}

	client := redis.NewClient(opt)
	if o.SkipPing {
		return client, nil
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	return client, nil
}
