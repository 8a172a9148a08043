package app

import (
	"context"
	"path/filepath"
	"spacetime-service/internal/config"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/services"
	"testing"

	_ "modernc.org/sqlite"
)

func TestOpenStoreBackends(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		backend string
		want    string
	}{
		{backend: config.BackendMemory, want: "memory"},
		{backend: config.BackendFile, want: "file:" + filepath.Join(dir, "files")},
		{backend: config.BackendSqlite, want: "sqlite"},
		{backend: config.BackendBadger, want: "badger"},
	}

	for _, tc := range cases {
		t.Run(tc.backend, func(t *testing.T) {
			cfg := &config.Config{
				CacheBackend: tc.backend,
				CacheDir:     filepath.Join(dir, "files"),
				SqlitePath:   filepath.Join(dir, "cache.db"),
				BadgerPath:   filepath.Join(dir, "badger"),
			}

			store, closeStore, err := OpenStore(context.Background(), cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer closeStore()

			if got := store.Describe(); got != tc.want {
				t.Fatalf("backend = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewMockEngine(t *testing.T) {
	cfg := &config.Config{
		RoutesProvider:   config.ProviderMock,
		CacheBackend:     config.BackendMemory,
		CostPerElement:   0.005,
		CostThreshold:    1,
		MaxAttempts:      3,
		FetchConcurrency: 2,
	}

	e, err := New(context.Background(), cfg, services.RejectAll{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer e.Close()

	locs := []domain.Location{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 1.01}}
	got, err := e.Batcher.QueryDense(context.Background(), locs, locs, domain.TravelModeDrive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("elements = %d, want 4", len(got))
	}

	stats, err := e.Cache.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Entries != 1 {
		t.Fatalf("cache entries = %d, want 1", stats.Entries)
	}
}
