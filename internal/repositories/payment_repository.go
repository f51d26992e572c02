package repositories

import (
	"errors"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.Payment) error
	FindByReference(db *gorm.DB, reference string) (*models.Payment, error)
	// MarkPaid - pending -> paid, повторный вебхук вернет false
	MarkPaid(db *gorm.DB, reference, providerPaymentID string, paidAt time.Time) (bool, error)
	MarkFailed(db *gorm.DB, reference, providerPaymentID string) (bool, error)
}

type paymentRepository struct{}

func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(db *gorm.DB, payment *models.Payment) error {
	return db.Create(payment).Error
}

func (r *paymentRepository) FindByReference(db *gorm.DB, reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := db.Where("reference = ?", reference).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) MarkPaid(db *gorm.DB, reference, providerPaymentID string, paidAt time.Time) (bool, error) {
	return r.resolve(db, reference, map[string]interface{}{
		"status":              models.PaymentStatusPaid,
		"provider_payment_id": nullableString(providerPaymentID),
		"paid_at":             paidAt,
		"updated_at":          time.Now(),
	})
}

func (r *paymentRepository) MarkFailed(db *gorm.DB, reference, providerPaymentID string) (bool, error) {
	return r.resolve(db, reference, map[string]interface{}{
		"status":              models.PaymentStatusFailed,
		"provider_payment_id": nullableString(providerPaymentID),
		"updated_at":          time.Now(),
	})
}

func (r *paymentRepository) resolve(db *gorm.DB, reference string, updates map[string]interface{}) (bool, error) {
	result := db.Model(&models.Payment{}).
		Where("reference = ? AND status = ?", reference, models.PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
