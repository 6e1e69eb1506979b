package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/deusflow/dailyreads/internal/retry"
	"github.com/deusflow/dailyreads/internal/urlnorm"
)

const (
	seenTable     = "seen_urls"
	timeLayout    = time.RFC3339
	defaultSQLite = "state/seen_urls.sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS seen_urls (
	url TEXT PRIMARY KEY,
	first_seen_utc TEXT NOT NULL
);`

// SQLStore keeps seen URLs in a SQL table. SQLite and Postgres share the
// query path and differ only in driver and placeholder format.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// NewSQLiteStore opens (and creates) the SQLite database at path.
func NewSQLiteStore(path string) (*SQLStore, error) {
	if path == "" {
		path = defaultSQLite
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// Single writer; avoids "database is locked" across pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	return newSQLStore(db, sq.Question)
}

// NewPostgresStore connects to dsn, retrying the initial ping.
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres backend")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = retry.WithRetry(ctx, retry.RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}, func() error {
		return db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("PostgreSQL seen store connected")
	return newSQLStore(db, sq.Dollar)
}

func newSQLStore(db *sql.DB, placeholders sq.PlaceholderFormat) (*SQLStore, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholders),
	}, nil
}

func (s *SQLStore) IsSeen(ctx context.Context, rawURL string) (bool, error) {
	query, args, err := s.builder.
		Select("1").
		From(seenTable).
		Where(sq.Eq{"url": urlnorm.Normalize(rawURL)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check seen url: %w", err)
	}
	return true, nil
}

func (s *SQLStore) MarkSeen(ctx context.Context, rawURL string, at time.Time) error {
	query, args, err := s.builder.
		Insert(seenTable).
		Columns("url", "first_seen_utc").
		Values(urlnorm.Normalize(rawURL), at.UTC().Format(timeLayout)).
		Suffix("ON CONFLICT (url) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark url seen: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]SeenRecord, error) {
	query, args, err := s.builder.
		Select("url", "first_seen_utc").
		From(seenTable).
		OrderBy("first_seen_utc", "url").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list seen urls: %w", err)
	}
	defer rows.Close()

	var out []SeenRecord
	for rows.Next() {
		var (
			rec SeenRecord
			ts  string
		)
		if err := rows.Scan(&rec.URL, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan seen url: %w", err)
		}
		if rec.FirstSeenAt, err = time.Parse(timeLayout, ts); err != nil {
			slog.Warn("Bad timestamp in seen store", "url", rec.URL, "value", ts)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
