package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PositionHandler struct {
	*BaseHandler
	positionService services.PositionService
}

func NewPositionHandler(base *BaseHandler, positionService services.PositionService) *PositionHandler {
	return &PositionHandler{
		BaseHandler:     base,
		positionService: positionService,
	}
}

func (h *PositionHandler) RegisterRoutes(rg *gin.RouterGroup, guard *middleware.Guard) {
	public := rg.Group("/positions")
	{
		public.GET("", h.ListPublic)
		public.GET("/:slug", guard.OptionalAuthenticate(), h.GetBySlug)
	}

	hr := rg.Group("/hr/positions", guard.Authenticate(), guard.RequireRoles(models.UserRoleHR))
	{
		hr.GET("", h.ListOwn)
		hr.POST("", guard.RequireCompleteCompanyProfile(), h.Create)
		hr.GET("/:id", h.GetOwned)
		hr.PUT("/:id", h.Update)
		hr.POST("/:id/archive", h.Archive)
	}
}

// ListPublic - опубликованные вакансии, top и featured выше обычных
func (h *PositionHandler) ListPublic(c *gin.Context) {
	var query dto.PositionListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	positions, err := h.positionService.ListPublic(h.GetDB(c), &query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, positions)
}

func (h *PositionHandler) GetBySlug(c *gin.Context) {
	viewer, _ := middleware.CurrentUser(c)

	position, err := h.positionService.GetBySlug(h.GetDB(c), c.Param("slug"), viewer)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

func (h *PositionHandler) ListOwn(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var query dto.PositionListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	positions, err := h.positionService.ListOwn(h.GetDB(c), userID, &query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, positions)
}

func (h *PositionHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePositionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	position, err := h.positionService.Create(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, position)
}

func (h *PositionHandler) GetOwned(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	position, err := h.positionService.GetOwned(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

func (h *PositionHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePositionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	position, err := h.positionService.Update(h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

func (h *PositionHandler) Archive(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	position, err := h.positionService.Archive(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}
