package handlers

import (
	"context"
	"io"
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// uploadFormField - имя поля multipart-формы для CV и фото
const uploadFormField = "file"

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup, guard *middleware.Guard) {
	profile := rg.Group("/developer/profile", guard.Authenticate(), guard.RequireRoles(models.UserRoleDeveloper))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpsertProfile)
		profile.POST("/cv", h.UploadCV)
		profile.DELETE("/cv", h.DeleteCV)
		profile.POST("/photo", h.UploadPhoto)
		profile.DELETE("/photo", h.DeletePhoto)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetDeveloperProfile(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpsertDeveloperProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpsertDeveloperProfile(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UploadCV(c *gin.Context) {
	h.handleUpload(c, h.profileService.UploadCV)
}

func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	h.handleUpload(c, h.profileService.UploadPhoto)
}

func (h *ProfileHandler) DeleteCV(c *gin.Context) {
	h.handleDelete(c, h.profileService.DeleteCV)
}

func (h *ProfileHandler) DeletePhoto(c *gin.Context) {
	h.handleDelete(c, h.profileService.DeletePhoto)
}

type uploadFunc func(ctx context.Context, db *gorm.DB, userID string, file io.Reader) (*dto.FileUploadResponse, error)

func (h *ProfileHandler) handleUpload(c *gin.Context, upload uploadFunc) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(uploadFormField)
	if err != nil {
		h.HandleServiceError(c, apperrors.FieldError(uploadFormField, "A file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	result, err := upload(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *ProfileHandler) handleDelete(c *gin.Context, remove func(ctx context.Context, db *gorm.DB, userID string) error) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), h.GetDB(c), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
