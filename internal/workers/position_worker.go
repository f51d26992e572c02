package workers

import (
	"context"
	"time"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services"

	"gorm.io/gorm"
)

const positionWorkerName = "position_worker"

// PositionWorker снимает с публикации истекшие вакансии, рассылает
// предупреждения и чистит протухшие refresh токены.
type PositionWorker struct {
	db               *gorm.DB
	positionService  services.PositionService
	refreshTokenRepo repositories.RefreshTokenRepository
	interval         time.Duration
	now              func() time.Time
}

func NewPositionWorker(
	db *gorm.DB,
	positionService services.PositionService,
	refreshTokenRepo repositories.RefreshTokenRepository,
	interval time.Duration,
) *PositionWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PositionWorker{
		db:               db,
		positionService:  positionService,
		refreshTokenRepo: refreshTokenRepo,
		interval:         interval,
		now:              time.Now,
	}
}

// Start запускает тикер. Используется, когда Redis для asynq не настроен.
func (w *PositionWorker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *PositionWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Position worker stopped")
			return
		case <-ticker.C:
			// ошибка уже залогирована в RunOnce
			_, _ = w.RunOnce(ctx)
		}
	}
}

// RunOnce - один прогон. Повторный запуск с тем же now ничего не меняет.
func (w *PositionWorker) RunOnce(ctx context.Context) (*services.SweepResult, error) {
	now := w.now()

	result, err := w.positionService.ExpirePositions(ctx, w.db.WithContext(ctx), now)
	if err != nil {
		logger.WorkerLog(positionWorkerName, "expire_positions", err)
		return nil, err
	}
	logger.WorkerLog(positionWorkerName, "expire_positions", nil,
		"expired", result.Expired,
		"warned", result.Warned,
		"failed", result.Failed,
	)

	if w.refreshTokenRepo != nil {
		removed, err := w.refreshTokenRepo.CleanExpired(w.db.WithContext(ctx), now)
		// чистка токенов не влияет на итог прогона
		logger.WorkerLog(positionWorkerName, "clean_refresh_tokens", err, "removed", removed)
	}

	return result, nil
}
