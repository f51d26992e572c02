package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup, guard *middleware.Guard) {
	rg.POST("/positions/:slug/apply",
		guard.Authenticate(),
		guard.RequireRoles(models.UserRoleDeveloper),
		guard.RequireCompleteProfile(),
		h.Apply,
	)

	developer := rg.Group("/developer/applications", guard.Authenticate(), guard.RequireRoles(models.UserRoleDeveloper))
	{
		developer.GET("", h.ListMine)
		developer.DELETE("/:id", h.Withdraw)
	}

	managers := []gin.HandlerFunc{guard.Authenticate(), guard.RequireRoles(models.UserRoleHR, models.UserRoleAdmin)}
	rg.GET("/hr/positions/:id/applications", append(managers, h.ListForPosition)...)
	rg.PUT("/hr/applications/:id/status", append(managers, h.UpdateStatus)...)
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.Apply(h.GetDB(c), userID, c.Param("slug"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	page, pageSize := ParsePagination(c)

	applications, err := h.applicationService.ListMine(h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applications)
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.applicationService.Withdraw(h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ApplicationHandler) ListForPosition(c *gin.Context) {
	viewer, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	applications, err := h.applicationService.ListForPosition(c.Request.Context(), h.GetDB(c), viewer, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applications)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	viewer, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.UpdateStatus(h.GetDB(c), viewer, c.Param("id"), req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}
