package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AuthHandler - вход по паролю. Социальный вход живет в OAuthHandler.
type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, guard *middleware.Guard) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}
}

// Register создает аккаунт с ролью developer или hr и сразу выдает пару токенов
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	h.respondAuth(c, http.StatusCreated, func() (*dto.AuthResponse, error) {
		return h.authService.Register(h.GetDB(c), &req)
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	h.respondAuth(c, http.StatusOK, func() (*dto.AuthResponse, error) {
		return h.authService.Login(h.GetDB(c), &req)
	})
}

// Refresh ротирует refresh token: старый после вызова недействителен
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	h.respondAuth(c, http.StatusOK, func() (*dto.AuthResponse, error) {
		return h.authService.RefreshToken(h.GetDB(c), req.RefreshToken)
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.Logout(h.GetDB(c), req.RefreshToken); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) respondAuth(c *gin.Context, status int, issue func() (*dto.AuthResponse, error)) {
	response, err := issue()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(status, response)
}
