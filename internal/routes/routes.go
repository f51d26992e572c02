package routes

import (
	"jobboard_backend/internal/handlers"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// Вебхуки, healthcheck и приватные файлы живут вне /api/v1.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	guard *middleware.Guard,
) {
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, guard)
		appHandlers.OAuthHandler.RegisterRoutes(api, guard)
		appHandlers.AccountHandler.RegisterRoutes(api, guard)
		appHandlers.ProfileHandler.RegisterRoutes(api, guard)
		appHandlers.CompanyHandler.RegisterRoutes(api, guard)
		appHandlers.PositionHandler.RegisterRoutes(api, guard)
		appHandlers.ApplicationHandler.RegisterRoutes(api, guard)
		appHandlers.PaymentHandler.RegisterRoutes(api, guard)
		appHandlers.AdminHandler.RegisterRoutes(api, guard)
	}

	root := ginRouter.Group("")
	appHandlers.HealthHandler.RegisterRoutes(root)
	appHandlers.PaymentHandler.RegisterWebhookRoutes(root)
	if appHandlers.FileHandler != nil {
		appHandlers.FileHandler.RegisterRoutes(root)
		logger.Info("Private file route registered", "prefix", appHandlers.FileHandler.Prefix())
	}
}
