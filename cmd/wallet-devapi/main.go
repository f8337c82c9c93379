package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/codingniket/FinApp/internal/cli"
	"github.com/codingniket/FinApp/internal/config"
	"github.com/codingniket/FinApp/internal/devapi"
	applog "github.com/codingniket/FinApp/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.SlogLevel(), applog.ComponentDevAPI)
	cfg = cli.LoadAndValidateConfig(logger, (*config.Config).ValidateDevAPI)

	store := devapi.NewStore()
	if cfg.DevAPISeedCount > 0 {
		seeded := store.Seed(cfg.DevAPISeedUser, cfg.DevAPISeedCount, gofakeit.New(0))
		logger.Info("Seeded transactions", applog.FieldUserID, cfg.DevAPISeedUser, applog.FieldCount, len(seeded))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.DevAPIPort,
		Handler:           devapi.NewRouter(store, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting wallet dev API", "port", cfg.DevAPIPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.DevAPIPort)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Wallet dev API stopped")
}
