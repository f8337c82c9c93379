package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/codingniket/FinApp/internal/amqp"
	"github.com/codingniket/FinApp/internal/api"
	"github.com/codingniket/FinApp/internal/cache"
	"github.com/codingniket/FinApp/internal/cli"
	"github.com/codingniket/FinApp/internal/config"
	apphttp "github.com/codingniket/FinApp/internal/http"
	"github.com/codingniket/FinApp/internal/identity"
	applog "github.com/codingniket/FinApp/internal/log"
	"github.com/codingniket/FinApp/internal/mail"
	"github.com/codingniket/FinApp/internal/storage"
)

const (
	sessionPurgeInterval = time.Hour
	// Abandoned sign-ups are kept this long so pending codes stay usable.
	purgeGrace = 24 * time.Hour
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.SlogLevel(), applog.ComponentApp)
	cfg = cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	apiMetrics, err := api.NewMetrics(registry)
	if err != nil {
		logger.Error("Failed to register API metrics", applog.FieldError, err)
		os.Exit(1)
	}
	wallet, err := api.New(cfg.WalletAPIURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithMetrics(apiMetrics),
		api.WithLogger(logger),
	)
	if err != nil {
		logger.Error("Failed to initialize wallet API client", applog.FieldError, err, "url", cfg.WalletAPIURL)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var mailer mail.Mailer
	if cfg.SMTPEnabled() {
		mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger)
		logger.Info("Verification codes sent by SMTP", "host", cfg.SMTPHost)
	} else {
		mailer = mail.NewLogSender(logger)
		logger.Warn("SMTP not configured, verification codes are logged")
	}

	cacheManager := cache.NewManager(logger)
	cacheManager.StartCleanup(5 * time.Minute)

	provider, err := identity.NewLocal(repo, mailer, identity.LocalConfig{
		Secret:     []byte(cfg.SessionSecret),
		SessionTTL: cfg.SessionTTL,
	}, cacheManager, logger)
	if err != nil {
		logger.Error("Failed to initialize identity provider", applog.FieldError, err)
		os.Exit(1)
	}

	opts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		Wallet:             wallet,
		Identity:           provider,
		Logger:             logger,
		Registry:           registry,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SessionTTL:         cfg.SessionTTL,
	}

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// The web client runs without events.
			logger.Error("Failed to initialize AMQP client, transaction events disabled", applog.FieldError, err)
		} else {
			opts.Publisher = amqpClient
			logger.Info("Publishing transaction events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv, err := apphttp.NewServer(opts)
	if err != nil {
		logger.Error("Failed to initialize HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", applog.FieldError, err)
			}
		}
	})

	go purgeSessions(ctx, repo, logger)

	logger.Info("Starting FinApp server", "port", cfg.Port, "wallet_api", cfg.WalletAPIURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// purgeSessions drops stale session and sign-up rows until ctx ends.
func purgeSessions(ctx context.Context, repo *storage.SQLiteRepository, logger *applog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, time.Now().Add(-purgeGrace))
			if err != nil {
				logger.Error("Session purge failed", applog.FieldError, err)
				continue
			}
			if n > 0 {
				logger.Info("Purged expired sessions", applog.FieldCount, n)
			}
		}
	}
}
