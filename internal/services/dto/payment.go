package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

type CheckoutRequest struct {
	Tier     models.ListingTier `json:"tier" validate:"required,is-listing-tier"`
	Provider string             `json:"provider" validate:"required,max=50"`
}

type CheckoutResponse struct {
	Reference   string               `json:"reference"`
	CheckoutURL string               `json:"checkout_url"`
	Amount      int64                `json:"amount"`
	Currency    string               `json:"currency"`
	Tier        models.ListingTier   `json:"tier"`
	Status      models.PaymentStatus `json:"status"`
}

// PaymentWebhook - конверт уведомления от провайдера оплаты
type PaymentWebhook struct {
	Reference         string               `json:"reference" validate:"required"`
	Status            models.PaymentStatus `json:"status" validate:"required,oneof=paid failed"`
	ProviderPaymentID string               `json:"provider_payment_id"`
}

type WebhookResult struct {
	Reference string               `json:"reference"`
	Status    models.PaymentStatus `json:"status"`
	// Applied - false для повторной доставки уже обработанного события
	Applied   bool       `json:"applied"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
