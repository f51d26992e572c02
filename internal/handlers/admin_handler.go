package handlers

import (
	"net/http"
	"time"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler - модерация вакансий
type AdminHandler struct {
	*BaseHandler
	positionService services.PositionService
}

func NewAdminHandler(base *BaseHandler, positionService services.PositionService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:     base,
		positionService: positionService,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, guard *middleware.Guard) {
	admin := rg.Group("/admin/positions", guard.Authenticate(), guard.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("", h.ListPositions)
		admin.POST("/expire", h.ExpirePositions)
		admin.POST("/:id/publish", h.transition(h.positionService.Publish))
		admin.POST("/:id/unpublish", h.transition(h.positionService.Unpublish))
		admin.POST("/:id/archive", h.transition(h.positionService.AdminArchive))
		admin.POST("/:id/restore", h.transition(h.positionService.Restore))
		admin.DELETE("/:id", h.DeletePosition)
	}
}

func (h *AdminHandler) ListPositions(c *gin.Context) {
	var query dto.PositionListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	positions, err := h.positionService.AdminList(h.GetDB(c), &query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, positions)
}

// transition - общий обработчик переходов статуса по id
func (h *AdminHandler) transition(apply func(db *gorm.DB, positionID string) (*dto.PositionResponse, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		position, err := apply(h.GetDB(c), c.Param("id"))
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, position)
	}
}

func (h *AdminHandler) DeletePosition(c *gin.Context) {
	if err := h.positionService.Delete(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExpirePositions - ручной запуск того же прогона, что и по расписанию
func (h *AdminHandler) ExpirePositions(c *gin.Context) {
	result, err := h.positionService.ExpirePositions(c.Request.Context(), h.GetDB(c), time.Now())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SweepResponse{
		Expired: result.Expired,
		Warned:  result.Warned,
		Failed:  result.Failed,
	})
}
