package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budget-impact/internal/api"
	"budget-impact/internal/data"
	"budget-impact/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	cfg := api.ConfigFromEnv()
	logging.Setup(os.Getenv("API_DEBUG") == "true", !cfg.Production)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("Could not read .env")
	}

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	if wd, err := os.Getwd(); err == nil {
		log.Info().Str("working_directory", wd).Msg("Starting up")
	}
	if info, err := os.Stat(cfg.CasesDir); err != nil || !info.IsDir() {
		log.Warn().Str("dir", cfg.CasesDir).Msg("Cases directory not found; case_id requests will fail")
	}

	cache := data.NewResultCache(cfg.CacheTTL)
	defer cache.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.NewRouter(cfg, cache),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Int("psa_max_trials", cfg.MaxTrials).
			Int("psa_workers", cfg.Workers).
			Dur("result_ttl", cfg.CacheTTL).
			Msg("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
