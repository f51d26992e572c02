package notifications

import (
	"context"
	"time"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
)

// Notifier - порт уведомлений владельцев вакансий.
// Доставка (почта, мессенджеры) в приложение не входит.
type Notifier interface {
	PositionExpired(ctx context.Context, position *models.Position) error
	PositionExpiringSoon(ctx context.Context, position *models.Position) error
}

// LogNotifier только пишет события в лог
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) PositionExpired(ctx context.Context, position *models.Position) error {
	logger.CtxInfo(ctx, "Position expired",
		"position_id", position.ID,
		"owner_id", position.OwnerID,
		"slug", position.Slug,
	)
	return nil
}

func (n *LogNotifier) PositionExpiringSoon(ctx context.Context, position *models.Position) error {
	args := []any{
		"position_id", position.ID,
		"owner_id", position.OwnerID,
		"slug", position.Slug,
	}
	if position.ExpiresAt != nil {
		args = append(args, "expires_at", position.ExpiresAt.Format(time.RFC3339))
	}
	logger.CtxInfo(ctx, "Position expiring soon", args...)
	return nil
}
