package driver

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoOptions configures the mongodb driver. A bare string is the URI.
type MongoOptions struct {
	URI            string        `mapstructure:"uri" validate:"required"`
	AppName        string        `mapstructure:"app_name"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	SkipPing       bool          `mapstructure:"skip_ping"`
}

func (o MongoOptions) clientOptions() *options.ClientOptions {
	co := options.Client().ApplyURI(o.URI)
	if o.AppName != "" {
		co.SetAppName(o.AppName)
	}
	if o.ConnectTimeout > 0 {
		co.SetConnectTimeout(o.ConnectTimeout)
	}
	if o.MaxPoolSize > 0 {
		co.SetMaxPoolSize(o.MaxPoolSize)
	}
	return co
}

// MongoDB returns a connected *mongo.Client.
func MongoDB(ctx context.Context, opts any) (any, error) {
	var o MongoOptions
	if err := decode(opts, "uri", &o); err != nil {
		return nil, optionsError("mongodb", err)
	}
	client, err := mongo.Connect(ctx, o.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if o.SkipPing {
		return client, nil
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}
