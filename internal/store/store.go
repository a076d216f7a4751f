// Package store provides persistence backends for the processed-comment
// cache.
//
// The cache is read once at startup and written once on shutdown, so the
// contract is deliberately small: load a snapshot, save a snapshot. The
// default backend is a flat file; SQLite and PostgreSQL backends are
// selected automatically when the configured location looks like a
// database DSN.
package store

import "context"

// CacheStore persists the processed-comment snapshot between runs.
type CacheStore interface {
	// Load returns the persisted identifiers, oldest first. A store that
	// has never been written returns an empty snapshot, not an error.
	Load(ctx context.Context) ([]string, error)

	// Save overwrites the persisted snapshot with ids, oldest first.
	Save(ctx context.Context, ids []string) error

	// Close releases any resources held by the store.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string // file path or database connection string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithFilePath sets the flat-file cache location.
func WithFilePath(path string) Option {
	return func(o *Opts) {
		o.DSN = path
	}
}

// WithSQLiteDSN sets the SQLite database location.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}
