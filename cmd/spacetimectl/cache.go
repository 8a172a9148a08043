package main

import (
	"fmt"
	"spacetime-service/internal/adapters/cache"
	"spacetime-service/internal/api/dto"
	"spacetime-service/internal/app"
	"spacetime-service/internal/config"

	"github.com/spf13/cobra"
)

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "shows the number and size of cached results",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "removes expired and unreadable cache entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheSweep,
}

var cacheInitSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "creates the cache table for the sqlite and postgres backends",
	Args:  cobra.NoArgs,
	RunE:  runCacheInitSchema,
}

var cacheCmd = &cobra.Command{
	Use:   "cache [command]",
	Short: "inspect and maintain the result cache",
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheSweepCmd, cacheInitSchemaCmd)
}

func openCache(cmd *cobra.Command) (*cache.ResultCache, func() error, error) {
	store, closeStore, err := app.OpenStore(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewResultCache(store), closeStore, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, closeStore, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	s, err := c.Stats(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, dto.CacheStatsResponse{
		TotalEntries:   s.Entries,
		TotalSizeBytes: s.TotalBytes,
		TotalSizeMB:    s.SizeMB(),
		Backend:        s.Backend,
	})
}

func runCacheSweep(cmd *cobra.Command, args []string) error {
	c, closeStore, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := c.Sweep(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired cache entries\n", n)
	return nil
}

// Opening a SQL backend applies its schema.
func runCacheInitSchema(cmd *cobra.Command, args []string) error {
	switch cfg.CacheBackend {
	case config.BackendSqlite, config.BackendPostgres:
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%s backend has no schema, nothing to do\n", cfg.CacheBackend)
		return nil
	}

	_, closeStore, err := app.OpenStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	fmt.Fprintf(cmd.OutOrStdout(), "schema ready for %s backend\n", cfg.CacheBackend)
	return nil
}
