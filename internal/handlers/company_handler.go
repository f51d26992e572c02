package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewCompanyHandler(base *BaseHandler, profileService services.ProfileService) *CompanyHandler {
	return &CompanyHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup, guard *middleware.Guard) {
	company := rg.Group("/hr/company", guard.Authenticate(), guard.RequireRoles(models.UserRoleHR))
	{
		company.GET("", h.GetCompany)
		company.PUT("", h.UpdateCompany)
	}
}

func (h *CompanyHandler) GetCompany(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	company, err := h.profileService.GetCompany(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCompanyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	company, err := h.profileService.UpdateCompany(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}
