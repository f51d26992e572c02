package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"jobboard_backend/internal/config"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

type paymentFixture struct {
	svc       *paymentService
	payments  *fakePaymentRepo
	positions *fakePositionRepo
}

func newPaymentFixture(positions ...*models.Position) *paymentFixture {
	posRepo := newFakePositionRepo(positions...)
	payRepo := newFakePaymentRepo()
	positionSvc := newTestPositionService(posRepo, &recordingNotifier{})

	svc := NewPaymentService(payRepo, posRepo, positionSvc, passThroughTx{}, PaymentSettings{
		WebhookSecret: testWebhookSecret,
		Tiers: map[string]config.TierPrice{
			"regular":  {Amount: 4900, Currency: "USD"},
			"featured": {Amount: 9900, Currency: "USD"},
			"top":      {Amount: 19900, Currency: "USD"},
		},
		Providers: map[string]config.PaymentProvider{
			"stripe": {CheckoutURL: "https://pay.example.com/checkout?lang=en"},
		},
	}).(*paymentService)
	svc.now = func() time.Time { return sweepNow }

	return &paymentFixture{svc: svc, payments: payRepo, positions: posRepo}
}

func draftPosition(id string) *models.Position {
	return &models.Position{
		BaseModel: models.BaseModel{ID: id},
		OwnerID:   "owner-1",
		Slug:      id,
		Status:    models.PositionStatusDraft,
		Tier:      models.ListingTierRegular,
	}
}

func webhookBody(t *testing.T, reference string, status models.PaymentStatus) []byte {
	t.Helper()
	body, err := json.Marshal(dto.PaymentWebhook{Reference: reference, Status: status, ProviderPaymentID: "pi_1"})
	require.NoError(t, err)
	return body
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"reference":"r"}`)
	sig := Sign("secret", body)

	assert.True(t, VerifySignature("secret", body, sig))
	assert.True(t, VerifySignature("secret", body, " "+sig+" "))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature("secret", []byte(`{"reference":"x"}`), sig))
	assert.False(t, VerifySignature("", body, Sign("", body)))
	assert.False(t, VerifySignature("secret", body, ""))
}

func TestCheckout_CreatesPendingPayment(t *testing.T) {
	f := newPaymentFixture(draftPosition("pos"))

	out, err := f.svc.Checkout(nil, "owner-1", "pos", &dto.CheckoutRequest{Tier: models.ListingTierFeatured, Provider: "stripe"})
	require.NoError(t, err)

	assert.Equal(t, int64(9900), out.Amount)
	assert.Equal(t, models.PaymentStatusPending, out.Status)
	assert.Contains(t, out.CheckoutURL, "reference="+out.Reference)
	assert.Contains(t, out.CheckoutURL, "lang=en")

	payment, err := f.payments.FindByReference(nil, out.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.ListingTierFeatured, payment.Tier)

	// тариф применяется только после оплаты
	pos := f.positions.get("pos")
	assert.Equal(t, models.ListingTierRegular, pos.Tier)
	assert.Equal(t, models.PositionStatusDraft, pos.Status)
	require.NotNil(t, pos.PaymentReference)
	assert.Equal(t, out.Reference, *pos.PaymentReference)
}

func TestCheckout_Rejections(t *testing.T) {
	archived := draftPosition("archived")
	archived.Status = models.PositionStatusArchived
	f := newPaymentFixture(draftPosition("pos"), archived)

	_, err := f.svc.Checkout(nil, "intruder", "pos", &dto.CheckoutRequest{Tier: models.ListingTierTop, Provider: "stripe"})
	assert.ErrorIs(t, err, apperrors.ErrNotPositionOwner)

	_, err = f.svc.Checkout(nil, "owner-1", "pos", &dto.CheckoutRequest{Tier: "platinum", Provider: "stripe"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTier)

	_, err = f.svc.Checkout(nil, "owner-1", "pos", &dto.CheckoutRequest{Tier: models.ListingTierTop, Provider: "paypal"})
	assert.ErrorIs(t, err, apperrors.ErrPaymentProviderNotFound)

	_, err = f.svc.Checkout(nil, "owner-1", "archived", &dto.CheckoutRequest{Tier: models.ListingTierTop, Provider: "stripe"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPositionTransition)
}

func TestHandleWebhook_PaidPublishesOnce(t *testing.T) {
	f := newPaymentFixture(draftPosition("pos"))
	checkout, err := f.svc.Checkout(nil, "owner-1", "pos", &dto.CheckoutRequest{Tier: models.ListingTierTop, Provider: "stripe"})
	require.NoError(t, err)

	body := webhookBody(t, checkout.Reference, models.PaymentStatusPaid)
	result, err := f.svc.HandleWebhook(context.Background(), nil, body, Sign(testWebhookSecret, body))
	require.NoError(t, err)

	assert.True(t, result.Applied)
	require.NotNil(t, result.ExpiresAt)
	assert.Equal(t, sweepNow.Add(30*24*time.Hour), *result.ExpiresAt)

	pos := f.positions.get("pos")
	assert.Equal(t, models.PositionStatusPublished, pos.Status)
	assert.Equal(t, models.ListingTierTop, pos.Tier)

	// повторная доставка ничего не меняет
	f.svc.now = func() time.Time { return sweepNow.Add(time.Hour) }
	replay, err := f.svc.HandleWebhook(context.Background(), nil, body, Sign(testWebhookSecret, body))
	require.NoError(t, err)
	assert.False(t, replay.Applied)
	assert.Equal(t, models.PaymentStatusPaid, replay.Status)
	assert.Equal(t, sweepNow.Add(30*24*time.Hour), *f.positions.get("pos").ExpiresAt)
}

func TestHandleWebhook_FailedLeavesPosition(t *testing.T) {
	f := newPaymentFixture(draftPosition("pos"))
	checkout, err := f.svc.Checkout(nil, "owner-1", "pos", &dto.CheckoutRequest{Tier: models.ListingTierTop, Provider: "stripe"})
	require.NoError(t, err)

	body := webhookBody(t, checkout.Reference, models.PaymentStatusFailed)
	result, err := f.svc.HandleWebhook(context.Background(), nil, body, Sign(testWebhookSecret, body))
	require.NoError(t, err)
	assert.True(t, result.Applied)

	payment, _ := f.payments.FindByReference(nil, checkout.Reference)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.Equal(t, models.PositionStatusDraft, f.positions.get("pos").Status)

	// оплата после отказа уже не применяется
	paid := webhookBody(t, checkout.Reference, models.PaymentStatusPaid)
	result, err = f.svc.HandleWebhook(context.Background(), nil, paid, Sign(testWebhookSecret, paid))
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, models.PositionStatusDraft, f.positions.get("pos").Status)
}

func TestHandleWebhook_PaidForArchivedPosition(t *testing.T) {
	f := newPaymentFixture(draftPosition("pos"))
	checkout, err := f.svc.Checkout(nil, "owner-1", "pos", &dto.CheckoutRequest{Tier: models.ListingTierTop, Provider: "stripe"})
	require.NoError(t, err)
	f.positions.get("pos").Status = models.PositionStatusArchived

	body := webhookBody(t, checkout.Reference, models.PaymentStatusPaid)
	result, err := f.svc.HandleWebhook(context.Background(), nil, body, Sign(testWebhookSecret, body))
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Nil(t, result.ExpiresAt)
	assert.Equal(t, models.PositionStatusArchived, f.positions.get("pos").Status)
}

func TestHandleWebhook_Rejections(t *testing.T) {
	f := newPaymentFixture(draftPosition("pos"))

	body := webhookBody(t, "unknown", models.PaymentStatusPaid)
	_, err := f.svc.HandleWebhook(context.Background(), nil, body, "deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrPaymentSignature)

	_, err = f.svc.HandleWebhook(context.Background(), nil, body, Sign(testWebhookSecret, body))
	assert.ErrorIs(t, err, apperrors.ErrPaymentNotFound)

	garbage := []byte("not json")
	_, err = f.svc.HandleWebhook(context.Background(), nil, garbage, Sign(testWebhookSecret, garbage))
	require.Error(t, err)
}
