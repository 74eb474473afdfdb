package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ZaguanLabs/tlunit"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS translation_memory (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT 'ai',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectValueSQL = `SELECT value FROM translation_memory WHERE key = $1`
	upsertSQL      = `INSERT INTO translation_memory (key, value, source, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, source = EXCLUDED.source, updated_at = EXCLUDED.updated_at`
	selectAllSQL = `SELECT key, value, source, updated_at FROM translation_memory ORDER BY key`
)

// Querier is the subset of *pgxpool.Pool the Postgres store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresCache is a translation memory kept in a PostgreSQL table.
type PostgresCache struct {
	db      Querier
	pool    *pgxpool.Pool
	timeout time.Duration
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewPostgresCache connects to databaseURL, verifies the connection and
// creates the translation_memory table if needed.
func NewPostgresCache(ctx context.Context, databaseURL string) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &tlunit.CacheError{Message: "connect PostgreSQL", Cause: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &tlunit.CacheError{Message: "ping PostgreSQL", Cause: err}
	}

	c := NewPostgresCacheFromQuerier(pool)
	c.pool = pool
	if err := c.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

// NewPostgresCacheFromQuerier wraps an existing pool or connection. The
// schema is not touched.
func NewPostgresCacheFromQuerier(db Querier) *PostgresCache {
	return &PostgresCache{
		db:      db,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// EnsureSchema creates the translation_memory table if it does not exist.
func (c *PostgresCache) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.Exec(ctx, createTableSQL); err != nil {
		return &tlunit.CacheError{Message: "create translation_memory", Cause: err}
	}
	return nil
}

// Get retrieves a translation. Database errors are reported as misses.
func (c *PostgresCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var value string
	if err := c.db.QueryRow(ctx, selectValueSQL, key).Scan(&value); err != nil {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return value, true
}

// Set stores a machine translation. Empty values are not stored.
func (c *PostgresCache) Set(key string, value string) error {
	return c.SetEntry(Entry{Key: key, Value: value, Source: SourceAI})
}

// SetEntry upserts a translation with its provenance. Empty values are not
// stored.
func (c *PostgresCache) SetEntry(e Entry) error {
	if e.Value == "" {
		return nil
	}
	if e.Source == "" {
		e.Source = SourceAI
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = c.now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if _, err := c.db.Exec(ctx, upsertSQL, e.Key, e.Value, string(e.Source), e.UpdatedAt); err != nil {
		return &tlunit.CacheError{Message: "upsert translation", Cause: err}
	}
	return nil
}

// Entries returns every stored translation ordered by key.
func (c *PostgresCache) Entries() ([]Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rows, err := c.db.Query(ctx, selectAllSQL)
	if err != nil {
		return nil, &tlunit.CacheError{Message: "list translations", Cause: err}
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var source string
		if err := rows.Scan(&e.Key, &e.Value, &source, &e.UpdatedAt); err != nil {
			return nil, &tlunit.CacheError{Message: "scan translation", Cause: err}
		}
		e.Source = Source(source)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &tlunit.CacheError{Message: "list translations", Cause: err}
	}
	return entries, nil
}

// Stats returns the lookup counters.
func (c *PostgresCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close releases the pool if the store opened it.
func (c *PostgresCache) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

var _ EntryStore = (*PostgresCache)(nil)
