package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"spacetime-service/internal/api"
	"spacetime-service/internal/app"
	"spacetime-service/internal/config"
	"spacetime-service/internal/services"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires the configured cache backend and routing provider behind ports and
// starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The service cannot prompt an operator; expensive queries are capped instead.
	engine, err := app.New(ctx, cfg, services.HardLimit{MaxCost: cfg.CostMax})
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	router := api.NewRouter(api.Deps{
		Batcher:          engine.Batcher,
		Grids:            engine.Grids,
		Cache:            engine.Cache,
		APIKeyConfigured: cfg.GoogleAPIKey != "",
	})

	// Write timeout covers a cold-cache grid: several rate-limit cooldowns.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
