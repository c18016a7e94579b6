package driver

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteOptions configures the sqlite driver. A bare string is the path.
type SQLiteOptions struct {
	Path         string `mapstructure:"path" validate:"required"`
	BusyTimeout  int    `mapstructure:"busy_timeout_ms" validate:"gte=0"`
	ForeignKeys  bool   `mapstructure:"foreign_keys"`
	WAL          bool   `mapstructure:"wal"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// dsn renders the modernc.org/sqlite connection string.
func (o SQLiteOptions) dsn() string {
	var pragmas []string
	if o.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("busy_timeout(%d)", o.BusyTimeout))
	}
	if o.ForeignKeys {
		pragmas = append(pragmas, "foreign_keys(1)")
	}
	if o.WAL {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}
	if len(pragmas) == 0 {
		return o.Path
	}
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(o.Path, "?") {
		sep = "&"
	}
	path := o.Path
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + sep + q.Encode()
}

// SQLite returns a pinged *sql.DB.
func SQLite(ctx context.Context, options any) (any, error) {
	var o SQLiteOptions
	if err := decode(options, "path", &o); err != nil {
		return nil, optionsError("sqlite", err)
	}
	db, err := sql.Open("sqlite", o.dsn())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", o.Path, err)
	}
	return db, nil
}
