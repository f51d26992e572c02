package handlers

import (
	"io"
	"net/http"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const (
	// SignatureHeader - HMAC-SHA256 от сырого тела уведомления, hex
	SignatureHeader = "X-Signature"

	maxWebhookBody = 64 << 10
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup, guard *middleware.Guard) {
	rg.POST("/hr/positions/:id/checkout",
		guard.Authenticate(),
		guard.RequireRoles(models.UserRoleHR),
		h.Checkout,
	)
}

// RegisterWebhookRoutes - уведомления провайдера идут мимо /api/v1 и без JWT
func (h *PaymentHandler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/payment", h.Webhook)
}

func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	checkout, err := h.paymentService.Checkout(h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkout)
}

// Webhook читает тело как есть: подпись считается по байтам, а не по JSON
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "Failed to read webhook body", err)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return
	}

	result, err := h.paymentService.HandleWebhook(c.Request.Context(), h.GetDB(c), body, c.GetHeader(SignatureHeader))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
