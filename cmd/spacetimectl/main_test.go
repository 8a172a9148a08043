package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ROUTES_PROVIDER", "mock")
	t.Setenv("CACHE_BACKEND", "file")
	t.Setenv("CACHE_DIR", t.TempDir())
	t.Setenv("RATE_LIMIT_COOLDOWN", "0s")
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("spacetimectl %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestMatrixThenCacheStats(t *testing.T) {
	setTestEnv(t)

	out := execute(t, "matrix", "--yes",
		"--origins", "40.7580,-73.9855",
		"--origins", "40.7484,-73.9857",
		"--destinations", "40.7829,-73.9654",
		"--mode", "WALK",
	)

	var resp struct {
		TravelMode string           `json:"travel_mode"`
		Matrix     []map[string]any `json:"matrix"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode matrix output: %v\n%s", err, out)
	}
	if resp.TravelMode != "WALK" {
		t.Fatalf("travel_mode = %q, want WALK", resp.TravelMode)
	}
	if len(resp.Matrix) != 2 {
		t.Fatalf("len(matrix) = %d, want 2", len(resp.Matrix))
	}

	out = execute(t, "cache", "stats")
	var stats struct {
		TotalEntries int `json:"total_entries"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats output: %v\n%s", err, out)
	}
	if stats.TotalEntries != 1 {
		t.Fatalf("total_entries = %d, want 1", stats.TotalEntries)
	}

	out = execute(t, "cache", "sweep")
	if !strings.Contains(out, "removed 0 expired cache entries") {
		t.Fatalf("sweep output = %q", out)
	}
}

func TestInitSchemaWithoutSQLBackend(t *testing.T) {
	setTestEnv(t)

	out := execute(t, "cache", "init-schema")
	if !strings.Contains(out, "nothing to do") {
		t.Fatalf("init-schema output = %q", out)
	}
}

func TestInitSchemaSqlite(t *testing.T) {
	setTestEnv(t)
	t.Setenv("CACHE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", t.TempDir()+"/cache.db")

	out := execute(t, "cache", "init-schema")
	if !strings.Contains(out, "schema ready for sqlite backend") {
		t.Fatalf("init-schema output = %q", out)
	}
}
