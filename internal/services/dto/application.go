package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"omitempty,max=5000"`
}

type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required,is-application-status"`
}

type ApplicationResponse struct {
	ID          string                   `json:"id"`
	PositionID  string                   `json:"position_id"`
	Position    *PositionResponse        `json:"position,omitempty"`
	CoverLetter string                   `json:"cover_letter"`
	Status      models.ApplicationStatus `json:"status"`
	Applicant   *ApplicantDTO            `json:"applicant,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// ApplicantDTO - кандидат глазами HR. CV отдается временной ссылкой.
type ApplicantDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Headline string   `json:"headline,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	PhotoURL string   `json:"photo_url,omitempty"`
	CVURL    string   `json:"cv_url,omitempty"`
}

type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page,omitempty"`
	PageSize     int                   `json:"page_size,omitempty"`
}

func NewApplicationResponse(a *models.Application) ApplicationResponse {
	out := ApplicationResponse{
		ID:          a.ID,
		PositionID:  a.PositionID,
		CoverLetter: a.CoverLetter,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
	}
	if a.Position != nil {
		position := NewPositionResponse(a.Position)
		out.Position = &position
	}
	return out
}
