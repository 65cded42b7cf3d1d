package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"familybank/internal/amqp"
	"familybank/internal/cli"
	"familybank/internal/ledger"
	"familybank/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting interest-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	state := repo.LoadState(context.Background())
	bank := ledger.New(state)
	var publisher services.Publisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	service := services.NewLedgerService(bank, repo, publisher)
	processor := services.NewInterestProcessor(service, repo)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Interest processor configured",
		"interval", cfg.InterestCheckInterval,
		"sqlite_db", cfg.SQLiteDBPath,
		"last_processed_month", bank.LastInterestMonth())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return processor.Run(gctx, cfg.InterestCheckInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Interest worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Interest-worker shutdown complete")
}
