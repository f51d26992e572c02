package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

type ProfileLinksDTO struct {
	GitHub    string `json:"github" validate:"omitempty,url"`
	LinkedIn  string `json:"linkedin" validate:"omitempty,url"`
	Portfolio string `json:"portfolio" validate:"omitempty,url"`
	Website   string `json:"website" validate:"omitempty,url"`
}

type UpsertDeveloperProfileRequest struct {
	Headline string          `json:"headline" validate:"omitempty,max=255"`
	Summary  string          `json:"summary" validate:"omitempty,max=5000"`
	Location string          `json:"location" validate:"omitempty,max=255"`
	Skills   []string        `json:"skills" validate:"omitempty,max=50,dive,min=1,max=50"`
	Links    ProfileLinksDTO `json:"links"`
}

type DeveloperProfileResponse struct {
	UserID     string          `json:"user_id"`
	Headline   string          `json:"headline"`
	Summary    string          `json:"summary"`
	Location   string          `json:"location"`
	Skills     []string        `json:"skills"`
	Links      ProfileLinksDTO `json:"links"`
	HasCV      bool            `json:"has_cv"`
	PhotoURL   string          `json:"photo_url,omitempty"`
	IsComplete bool            `json:"is_complete"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type UpdateCompanyRequest struct {
	CompanyName        string `json:"company_name" validate:"required,max=255"`
	CompanyWebsite     string `json:"company_website" validate:"omitempty,url"`
	CompanyDescription string `json:"company_description" validate:"required,max=5000"`
	CompanyLocation    string `json:"company_location" validate:"omitempty,max=255"`
}

type CompanyResponse struct {
	CompanyName        string `json:"company_name"`
	CompanyWebsite     string `json:"company_website"`
	CompanyDescription string `json:"company_description"`
	CompanyLocation    string `json:"company_location"`
	IsComplete         bool   `json:"is_complete"`
}

// FileUploadResponse - результат загрузки CV или фото
type FileUploadResponse struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func NewCompanyResponse(user *models.User) *CompanyResponse {
	return &CompanyResponse{
		CompanyName:        user.CompanyName,
		CompanyWebsite:     user.CompanyWebsite,
		CompanyDescription: user.CompanyDescription,
		CompanyLocation:    user.CompanyLocation,
		IsComplete:         user.HasCompleteCompanyProfile(),
	}
}
