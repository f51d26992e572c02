// Команда sweep выполняет один прогон истечения вакансий и выходит.
// Подходит для cron или Kubernetes CronJob вместо встроенного воркера.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"jobboard_backend/database"
	"jobboard_backend/internal/app"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/notifications"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/workers"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)

	gormDB, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return 1
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos := app.NewRepositories()
	positionService := services.NewPositionService(
		repos.Positions,
		notifications.NewLogNotifier(),
		cfg.ListingDuration(),
		cfg.WarningWindow(),
	)
	worker := workers.NewPositionWorker(gormDB, positionService, repos.RefreshTokens, 0)

	result, err := worker.RunOnce(ctx)
	if err != nil {
		return 1
	}
	if result.Failed > 0 {
		logger.Warn("Sweep finished with failures", "failed", result.Failed)
		return 1
	}
	return 0
}
