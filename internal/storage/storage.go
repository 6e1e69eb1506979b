// Package storage persists the set of URLs already used in a digest.
package storage

import (
	"context"
	"fmt"
	"time"
)

// SeenRecord is a URL selected in some run and the time it was first stored.
type SeenRecord struct {
	URL         string    `json:"url"`
	FirstSeenAt time.Time `json:"first_seen_utc"`
}

// SeenStore is durable insert-only URL state. Implementations normalize URLs
// before reading or writing so any equivalent form matches.
type SeenStore interface {
	IsSeen(ctx context.Context, url string) (bool, error)
	// MarkSeen is a no-op when the URL is already stored.
	MarkSeen(ctx context.Context, url string, at time.Time) error
	List(ctx context.Context) ([]SeenRecord, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendFile     = "file"
)

type Options struct {
	Backend     string
	SQLitePath  string
	FilePath    string
	DatabaseURL string
}

// Open returns the store selected by opts.Backend.
func Open(ctx context.Context, opts Options) (SeenStore, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.DatabaseURL)
	case BackendFile:
		return NewFileStore(opts.FilePath)
	default:
		return nil, fmt.Errorf("unknown state backend %q", opts.Backend)
	}
}
