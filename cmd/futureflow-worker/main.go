package main

import (
	"context"
	"errors"
	"os"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"futureflow/internal/amqp"
	"futureflow/internal/cli"
	applog "futureflow/internal/log"
	"futureflow/internal/services"
	"futureflow/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting futureflow-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := cli.ShutdownContext()
	defer stop()

	commitWorker := worker.NewCommitWorker(repo)
	cycles := services.NewCycleService(repo, nil, nil)

	g, gctx := errgroup.WithContext(ctx)

	// Allocation commits from the API server.
	g.Go(func() error {
		err := amqpClient.ConsumeAllocationCommitted(gctx, func(msg *amqp.AllocationCommittedMessage) error {
			return commitWorker.HandleCommitMessage(gctx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// Monthly installment reset.
	g.Go(func() error {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.ResetSchedule, func() {
			if _, err := cycles.MonthlyReset(gctx); err != nil {
				logger.Error("Monthly reset failed", "error", err)
			}
		})
		if err != nil {
			return err
		}

		scheduler.Start()
		logger.Info("Installment reset scheduled", "schedule", cfg.ResetSchedule)

		<-gctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
