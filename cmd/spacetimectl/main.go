// Command spacetimectl runs travel time queries and cache maintenance from a
// terminal. Expensive queries ask for confirmation unless --yes is given.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"spacetime-service/internal/config"
	"spacetime-service/internal/ports"
	"spacetime-service/internal/services"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var (
	cfg        *config.Config
	assumeYes  bool
	verboseLog bool
)

var rootCmd = &cobra.Command{
	Use:   "spacetimectl [command]",
	Short: "travel time matrix queries and cache maintenance",
	Long: `
Queries route matrices and spacetime grids through the result cache, and
inspects or sweeps the cache. Configuration is read from the environment
and an optional .env file.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verboseLog {
			log.SetOutput(io.Discard)
		}
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found (using environment variables)")
		}
		var err error
		cfg, err = config.Load()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "approve expensive queries without prompting")
	rootCmd.PersistentFlags().BoolVarP(&verboseLog, "verbose", "v", false, "log operations to stderr")

	rootCmd.AddCommand(cacheCmd, matrixCmd, gridCmd, spacetimeCmd)
}

// costPolicy prompts on the terminal unless --yes was given.
func costPolicy() ports.CostPolicy {
	if assumeYes {
		return services.AutoApprove{}
	}
	return services.TerminalPrompt{In: os.Stdin, Out: os.Stderr}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
