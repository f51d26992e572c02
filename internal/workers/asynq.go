package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobboard_backend/internal/config"
	"jobboard_backend/internal/logger"

	"github.com/hibiken/asynq"
)

// TaskExpirePositions - периодическая задача истечения вакансий
const TaskExpirePositions = "positions:expire"

// asynqLoggerAdapter пробрасывает логи asynq в slog
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// NewExpireTask - задача без payload: прогон сам находит все вакансии.
// Unique не дает двум планировщикам поставить прогон дважды.
func NewExpireTask() *asynq.Task {
	return asynq.NewTask(
		TaskExpirePositions,
		nil,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(time.Hour),
	)
}

// HandleExpirePositions - обработчик задачи для asynq.ServeMux
func HandleExpirePositions(worker *PositionWorker) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		if _, err := worker.RunOnce(ctx); err != nil {
			return fmt.Errorf("expire positions: %w", err)
		}
		return nil
	}
}

// StartAsynq поднимает сервер задач и планировщик по cron из конфига.
// Возвращает функцию остановки обоих.
func StartAsynq(cfg *config.Config, worker *PositionWorker) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.Worker.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	location, err := time.LoadLocation(cfg.Worker.Timezone)
	if err != nil {
		logger.Warn("Invalid worker timezone, using UTC", "timezone", cfg.Worker.Timezone, "error", err)
		location = time.UTC
	}

	adapter := &asynqLoggerAdapter{logger: logger.GetLogger()}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     1,
		ShutdownTimeout: 30 * time.Second,
		Logger:          adapter,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Error("Task execution failed",
				"task_type", task.Type(),
				"error", err.Error(),
				"retry_count", retried,
				"max_retry", maxRetry,
			)
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskExpirePositions, HandleExpirePositions(worker))

	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: location,
		LogLevel: asynq.InfoLevel,
		Logger:   adapter,
	})

	entryID, err := scheduler.Register(cfg.Worker.Schedule, NewExpireTask())
	if err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("failed to register expire schedule: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info("Scheduler started",
		"schedule", cfg.Worker.Schedule,
		"timezone", location.String(),
		"entry_id", entryID,
	)

	return func() {
		scheduler.Shutdown()
		srv.Shutdown()
	}, nil
}
