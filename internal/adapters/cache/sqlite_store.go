package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"spacetime-service/internal/platform/obs"
	"spacetime-service/internal/ports"
	"strings"
)

// SQLite backed ResultStore over the result_cache table.
// The schema is created by InitSqliteSchema.
type SqliteStore struct {
	DB *sql.DB
}

func NewSqliteStore(db *sql.DB) *SqliteStore {
	return &SqliteStore{DB: db}
}

func (s *SqliteStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer obs.Time(ctx, "cache.sqlite.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite store: db is nil")
	}

	q := `
	SELECT entry
	FROM result_cache
	WHERE cache_key = ?;
	`

	var entry []byte
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&entry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sqlite store: query result_cache table: %w", err)
	}
	return entry, nil
}

func (s *SqliteStore) Put(ctx context.Context, key string, value []byte) error {
	if s.DB == nil {
		return errors.New("sqlite store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert sqlite store: empty cache key")
	}

	q := `
	INSERT OR REPLACE INTO result_cache (
		cache_key,
		entry,
		updated_at
	)
	VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'));
	`
	if _, err := s.DB.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("insert sqlite store key=%q: %w", key, err)
	}
	return nil
}

func (s *SqliteStore) Delete(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("sqlite store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM result_cache WHERE cache_key = ?;`, key); err != nil {
		return fmt.Errorf("delete sqlite store key=%q: %w", key, err)
	}
	return nil
}

// Scan buffers the listing before calling fn so that fn may use the
// (single-connection) database.
func (s *SqliteStore) Scan(ctx context.Context, fn func(key string, size int64) error) error {
	if s.DB == nil {
		return errors.New("sqlite store: db is nil")
	}

	q := `
	SELECT
		cache_key,
		length(entry)
	FROM result_cache
	ORDER BY cache_key;
	`
	listing, err := scanSizes(ctx, s.DB, q)
	if err != nil {
		return fmt.Errorf("scan sqlite store: %w", err)
	}

	for _, r := range listing {
		if err := fn(r.key, r.size); err != nil {
			return err
		}
	}
	return nil
}

func (s *SqliteStore) Describe() string { return "sqlite" }

type keySize struct {
	key  string
	size int64
}

func scanSizes(ctx context.Context, db *sql.DB, q string) ([]keySize, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query result_cache table: %w", err)
	}
	defer rows.Close()

	out := make([]keySize, 0, 64)
	for rows.Next() {
		var r keySize
		if err := rows.Scan(&r.key, &r.size); err != nil {
			return nil, fmt.Errorf("scan rows: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return out, nil
}
