package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"jobboard_backend/internal/config"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentSettings - тарифы и провайдеры из конфига
type PaymentSettings struct {
	WebhookSecret string
	Tiers         map[string]config.TierPrice
	Providers     map[string]config.PaymentProvider
}

type PaymentService interface {
	Checkout(db *gorm.DB, ownerID, positionID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	// HandleWebhook проверяет подпись сырого тела и применяет событие идемпотентно
	HandleWebhook(ctx context.Context, db *gorm.DB, body []byte, signature string) (*dto.WebhookResult, error)
}

type paymentService struct {
	paymentRepo     repositories.PaymentRepository
	positionRepo    repositories.PositionRepository
	positionService PositionService
	txManager       repositories.TxManager
	settings        PaymentSettings
	now             func() time.Time
}

func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	positionRepo repositories.PositionRepository,
	positionService PositionService,
	txManager repositories.TxManager,
	settings PaymentSettings,
) PaymentService {
	return &paymentService{
		paymentRepo:     paymentRepo,
		positionRepo:    positionRepo,
		positionService: positionService,
		txManager:       txManager,
		settings:        settings,
		now:             time.Now,
	}
}

// Checkout создает pending-платеж и возвращает ссылку на страницу оплаты провайдера
func (s *paymentService) Checkout(db *gorm.DB, ownerID, positionID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if !req.Tier.IsValid() {
		return nil, apperrors.ErrInvalidTier
	}
	price, ok := s.settings.Tiers[string(req.Tier)]
	if !ok {
		return nil, apperrors.ErrInvalidTier
	}
	provider, ok := s.settings.Providers[req.Provider]
	if !ok || provider.CheckoutURL == "" {
		return nil, apperrors.ErrPaymentProviderNotFound
	}

	position, err := s.positionRepo.FindByID(db, positionID)
	if err != nil {
		if errors.Is(err, repositories.ErrPositionNotFound) {
			return nil, apperrors.ErrPositionNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if position.OwnerID != ownerID {
		return nil, apperrors.ErrNotPositionOwner
	}
	if position.Status == models.PositionStatusArchived {
		return nil, apperrors.ErrInvalidPositionTransition
	}

	checkoutURL, err := url.Parse(provider.CheckoutURL)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	payment := &models.Payment{
		Reference:  uuid.NewString(),
		PositionID: position.ID,
		UserID:     ownerID,
		Provider:   req.Provider,
		Tier:       req.Tier,
		Amount:     price.Amount,
		Currency:   price.Currency,
		Status:     models.PaymentStatusPending,
	}

	err = s.txManager.WithinTx(db, func(tx *gorm.DB) error {
		if err := s.paymentRepo.Create(tx, payment); err != nil {
			return err
		}
		return s.positionRepo.Update(tx, position.ID, map[string]interface{}{
			"payment_reference": payment.Reference,
		})
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	query := checkoutURL.Query()
	query.Set("reference", payment.Reference)
	checkoutURL.RawQuery = query.Encode()

	return &dto.CheckoutResponse{
		Reference:   payment.Reference,
		CheckoutURL: checkoutURL.String(),
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		Tier:        payment.Tier,
		Status:      payment.Status,
	}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, db *gorm.DB, body []byte, signature string) (*dto.WebhookResult, error) {
	if !VerifySignature(s.settings.WebhookSecret, body, signature) {
		logger.CtxWarn(ctx, "Payment webhook rejected: bad signature")
		return nil, apperrors.ErrPaymentSignature
	}

	var event dto.PaymentWebhook
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, apperrors.NewBadRequestError("Invalid webhook payload")
	}
	if event.Reference == "" {
		return nil, apperrors.FieldError("reference", "This field is required")
	}

	result := &dto.WebhookResult{Reference: event.Reference, Status: event.Status}

	err := s.txManager.WithinTx(db, func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.FindByReference(tx, event.Reference)
		if err != nil {
			if errors.Is(err, repositories.ErrPaymentNotFound) {
				return apperrors.ErrPaymentNotFound
			}
			return apperrors.InternalError(err)
		}

		switch event.Status {
		case models.PaymentStatusPaid:
			now := s.now()
			applied, err := s.paymentRepo.MarkPaid(tx, payment.Reference, event.ProviderPaymentID, now)
			if err != nil {
				return apperrors.InternalError(err)
			}
			result.Applied = applied
			if !applied {
				// повторная доставка: платеж уже закрыт
				result.Status = payment.Status
				return nil
			}

			position, err := s.positionService.PublishPaid(tx, payment.PositionID, payment.Tier, payment.Reference, now)
			if err != nil {
				// деньги получены, вакансию в архиве не публикуем, разбирает админ
				if errors.Is(err, apperrors.ErrInvalidPositionTransition) {
					logger.CtxWarn(ctx, "Paid position cannot be published", "reference", payment.Reference, "position_id", payment.PositionID)
					return nil
				}
				return err
			}
			result.ExpiresAt = position.ExpiresAt
			return nil

		case models.PaymentStatusFailed:
			applied, err := s.paymentRepo.MarkFailed(tx, payment.Reference, event.ProviderPaymentID)
			if err != nil {
				return apperrors.InternalError(err)
			}
			result.Applied = applied
			if !applied {
				result.Status = payment.Status
			}
			return nil

		default:
			return apperrors.FieldError("status", "Must be one of: paid, failed")
		}
	})
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "Payment webhook processed",
		"reference", result.Reference,
		"status", result.Status,
		"applied", result.Applied,
	)
	return result, nil
}

// Sign - hex HMAC-SHA256 тела запроса
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature - без настроенного секрета все запросы отклоняются
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
