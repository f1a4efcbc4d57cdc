package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"futureflow/internal/amqp"
	"futureflow/internal/cache"
	"futureflow/internal/cli"
	"futureflow/internal/core"
	apphttp "futureflow/internal/http"
	applog "futureflow/internal/log"
	"futureflow/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	forecastCache, err := cache.New(cache.Backend(cfg.CacheBackend), cfg.RedisAddr, cfg.ForecastCacheTTL)
	if err != nil {
		logger.Error("Failed to initialize forecast cache", "error", err, "backend", cfg.CacheBackend)
		os.Exit(1)
	}

	// Memory caches need periodic sweeping; redis expires on its own.
	cacheManager := cache.NewManager()
	if cleaner, ok := forecastCache.(cache.Cleaner); ok {
		cacheManager.Register(cleaner)
		cacheManager.StartCleanup(10 * time.Minute)
		defer cacheManager.Stop()
	}

	// AMQP is optional: without a broker, confirmed allocations apply
	// their goal balances synchronously.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, goal updates will apply synchronously", "error", err)
		} else {
			defer amqpClient.Close()
		}
	}

	forecasts := services.NewForecastService(repo, forecastCache, cfg.HorizonDays, cfg.WeekCount)
	var publisher services.AllocationPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	allocations := services.NewAllocationService(repo, publisher, cfg.ReserveDays, core.Money{Cents: cfg.DailyBaselineCents})
	cycles := services.NewCycleService(repo, forecasts, nil)

	srv := apphttp.NewServer(":"+cfg.Port, repo, forecasts, allocations, cycles)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting futureflow server",
		"port", cfg.Port,
		"cache_backend", cfg.CacheBackend,
		"horizon_days", cfg.HorizonDays,
		"week_count", cfg.WeekCount)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
