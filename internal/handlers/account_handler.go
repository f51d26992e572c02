package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	*BaseHandler
	accountService services.AccountService
}

func NewAccountHandler(base *BaseHandler, accountService services.AccountService) *AccountHandler {
	return &AccountHandler{
		BaseHandler:    base,
		accountService: accountService,
	}
}

// RegisterRoutes: /account доступен без выбранной роли, сюда ведет гейт ролей
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup, guard *middleware.Guard) {
	account := rg.Group("/account", guard.Authenticate())
	{
		account.GET("/me", h.Me)
		account.GET("/role", h.RoleSelection)
		account.POST("/role", h.SelectRole)
		account.DELETE("", h.DeleteAccount)
	}
}

func (h *AccountHandler) Me(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.accountService.Me(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AccountHandler) RoleSelection(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	info, err := h.accountService.RoleSelection(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *AccountHandler) SelectRole(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SelectRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.accountService.SelectRole(h.GetDB(c), userID, req.Role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.DeleteAccountRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), h.GetDB(c), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
