package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/stockline-app/stockline/internal/app"
	"github.com/stockline-app/stockline/internal/catalog"
	"github.com/stockline-app/stockline/internal/platform/cache"
	"github.com/stockline-app/stockline/internal/platform/db"
	"github.com/stockline-app/stockline/internal/sheets"
	"github.com/stockline-app/stockline/internal/suppliers"
	"github.com/stockline-app/stockline/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, sheet cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	registry, err := suppliers.Load(cfg.SuppliersFile, logger)
	if err != nil {
		logger.Error("load supplier registry", slog.Any("error", err))
		os.Exit(1)
	}

	repo := catalog.NewRepository(pool)
	associations := catalog.NewAssociations(repo, cfg.DefaultOwner, logger)
	sheetSource := sheets.DirSource{Dir: cfg.SheetDir}
	sheetCache := catalog.NewSheetCache(redisClient, cfg.SheetCacheTTL)

	maintenance := jobs.NewMaintenance(associations, registry, sheetSource, sheetCache, logger)

	repairMissingTask, err := jobs.NewMaintenanceTask(jobs.TaskRepairMissing)
	if err != nil {
		logger.Error("build repair task", slog.Any("error", err))
		os.Exit(1)
	}
	repairOrphansTask, err := jobs.NewMaintenanceTask(jobs.TaskRepairOrphans)
	if err != nil {
		logger.Error("build repair task", slog.Any("error", err))
		os.Exit(1)
	}
	mirrorTask, err := jobs.NewMaintenanceTask(jobs.TaskMirrorRebuild)
	if err != nil {
		logger.Error("build mirror task", slog.Any("error", err))
		os.Exit(1)
	}
	warmTask, err := jobs.NewMaintenanceTask(jobs.TaskSheetWarm)
	if err != nil {
		logger.Error("build warm task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers:  maintenance.Handlers(),
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: repairOrphansTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 2 * * *", Task: repairMissingTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: mirrorTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 */6 * * *", Task: warmTask, Options: []asynq.Option{asynq.MaxRetry(2)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
