package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/codingniket/FinApp/internal/amqp"
	"github.com/codingniket/FinApp/internal/cli"
	"github.com/codingniket/FinApp/internal/config"
	applog "github.com/codingniket/FinApp/internal/log"
	gsheet "github.com/codingniket/FinApp/internal/sheets/google"
	"github.com/codingniket/FinApp/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.SlogLevel(), applog.ComponentWorker)
	cfg = cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	logger.Info("Starting finapp-worker")

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	sheetsClient, err := gsheet.New(startCtx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		startCancel()
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	if err := sheetsClient.EnsureHeader(startCtx); err != nil {
		// Appends do not depend on the header row.
		logger.Warn("Failed to write sheet header", applog.FieldError, err)
	}
	startCancel()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(sheetsClient, logger)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeTransactionEvents(ctx, exportWorker.HandleEvent)
	}()

	select {
	case <-ctx.Done():
		<-done
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
			os.Exit(1)
		}
	}

	logger.Info("Worker stopped gracefully")
}
