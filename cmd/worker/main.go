package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/onco-erp/onco/internal/app"
	"github.com/onco-erp/onco/internal/expiry"
	"github.com/onco-erp/onco/internal/inventory"
	jobmetrics "github.com/onco-erp/onco/internal/jobs"
	"github.com/onco-erp/onco/internal/notifications"
	"github.com/onco-erp/onco/internal/observability"
	"github.com/onco-erp/onco/internal/platform/cache"
	"github.com/onco-erp/onco/internal/platform/db"
	"github.com/onco-erp/onco/internal/users"
	"github.com/onco-erp/onco/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	location, err := cfg.ReminderLocation()
	if err != nil {
		logger.Error("load reminder timezone", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, cfg.DBOptions())
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	scheduler := expiry.NewScheduler(expiry.Config{
		Items:         inventory.NewRepository(pool),
		Users:         users.NewRepository(pool),
		Notifications: notifications.NewRepository(pool),
		Logger:        logger,
		Role:          cfg.ReminderRole,
		Location:      location,
	})
	metrics := observability.NewMetrics()
	expiryJob := jobs.NewExpiryRemindersJob(scheduler, logger, jobmetrics.NewMetrics(metrics.Registerer()))

	expiryTask, err := jobs.NewExpiryRemindersTask("cron")
	if err != nil {
		logger.Error("build expiry reminders task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: cfg.AsynqRedis(),
		Logger:    logger,
		Location:  location,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskExpiryReminders, Handler: expiryJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ReminderCron, Task: expiryTask, Options: []asynq.Option{asynq.MaxRetry(0)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if cfg.WorkerMetricsAddr != "" {
		server := jobs.NewMetricsServer(cfg.WorkerMetricsAddr, metrics.Handler())
		g.Go(func() error {
			logger.Info("starting worker metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
