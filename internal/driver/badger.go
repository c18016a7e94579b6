package driver

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerOptions configures the embedded badger store. A bare string is the
// directory.
type BadgerOptions struct {
	Path       string `mapstructure:"path" validate:"required_unless=InMemory true"`
	InMemory   bool   `mapstructure:"in_memory"`
	ReadOnly   bool   `mapstructure:"read_only"`
	SyncWrites bool   `mapstructure:"sync_writes"`
}

// Badger opens a *badger.DB.
func Badger(_ context.Context, options any) (any, error) {
	var o BadgerOptions
	if err := decode(options, "path", &o); err != nil {
		return nil, optionsError("badger", err)
	}
	if o.InMemory && o.Path != "" {
		return nil, optionsError("badger", fmt.Errorf("path must be empty when in_memory is set"))
	}
	opts := badger.DefaultOptions(o.Path).
		WithInMemory(o.InMemory).
		WithReadOnly(o.ReadOnly).
		WithSyncWrites(o.SyncWrites).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}
