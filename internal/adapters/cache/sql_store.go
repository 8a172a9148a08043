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

// SQLStore is a Postgres-backed ResultStore over the result_cache table.
// The schema is created by InitPostgresSchema.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer obs.Time(ctx, "cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql store: db is nil")
	}

	q := `
	SELECT entry
	FROM result_cache
	WHERE cache_key = $1;
	`

	var entry []byte
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&entry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sql store: query result_cache table: %w", err)
	}
	return entry, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	if s.DB == nil {
		return errors.New("sql store: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert sql store: empty cache key")
	}

	q := `
	INSERT INTO result_cache (cache_key, entry, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (cache_key) DO UPDATE
	SET entry = EXCLUDED.entry,
		updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("insert sql store key=%q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("sql store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM result_cache WHERE cache_key = $1;`, key); err != nil {
		return fmt.Errorf("delete sql store key=%q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Scan(ctx context.Context, fn func(key string, size int64) error) error {
	if s.DB == nil {
		return errors.New("sql store: db is nil")
	}

	q := `
	SELECT cache_key, octet_length(entry)
	FROM result_cache
	ORDER BY cache_key;
	`
	listing, err := scanSizes(ctx, s.DB, q)
	if err != nil {
		return fmt.Errorf("scan sql store: %w", err)
	}

	for _, r := range listing {
		if err := fn(r.key, r.size); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) Describe() string { return "postgres" }
