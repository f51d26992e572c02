package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/validator"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubPaymentService struct {
	services.PaymentService
	body      []byte
	signature string
	err       error
}

func (s *stubPaymentService) HandleWebhook(ctx context.Context, db *gorm.DB, body []byte, signature string) (*dto.WebhookResult, error) {
	s.body = body
	s.signature = signature
	if s.err != nil {
		return nil, s.err
	}
	return &dto.WebhookResult{Reference: "ref-1", Status: models.PaymentStatusPaid, Applied: true}, nil
}

func newWebhookRouter(svc services.PaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.DBMiddleware(nil))
	NewPaymentHandler(NewBaseHandler(validator.New()), svc).RegisterWebhookRoutes(router.Group(""))
	return router
}

func TestPaymentHandler_WebhookPassesRawBody(t *testing.T) {
	svc := &stubPaymentService{}
	router := newWebhookRouter(svc)

	// порядок ключей и пробелы важны для подписи
	raw := `{"status": "paid",  "reference": "ref-1"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(raw))
	req.Header.Set(SignatureHeader, "abc123")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, raw, string(svc.body))
	assert.Equal(t, "abc123", svc.signature)
	assert.Contains(t, w.Body.String(), `"applied":true`)
}

func TestPaymentHandler_WebhookBadSignature(t *testing.T) {
	router := newWebhookRouter(&stubPaymentService{err: apperrors.ErrPaymentSignature})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SIGNATURE")
}
