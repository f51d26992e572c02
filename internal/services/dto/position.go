package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

type CreatePositionRequest struct {
	Title          string   `json:"title" validate:"required,min=3,max=255"`
	Description    string   `json:"description" validate:"required,min=10"`
	Location       string   `json:"location" validate:"omitempty,max=255"`
	Remote         bool     `json:"remote"`
	EmploymentType string   `json:"employment_type" validate:"omitempty,oneof=full_time part_time contract internship"`
	SalaryMin      *int     `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax      *int     `json:"salary_max" validate:"omitempty,min=0"`
	Currency       string   `json:"currency" validate:"omitempty,len=3"`
	TechStack      []string `json:"tech_stack" validate:"omitempty,max=30,dive,min=1,max=50"`
}

// UpdatePositionRequest - частичное обновление, тариф здесь не меняется
type UpdatePositionRequest struct {
	Title          *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description    *string  `json:"description" validate:"omitempty,min=10"`
	Location       *string  `json:"location" validate:"omitempty,max=255"`
	Remote         *bool    `json:"remote"`
	EmploymentType *string  `json:"employment_type" validate:"omitempty,oneof=full_time part_time contract internship"`
	SalaryMin      *int     `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax      *int     `json:"salary_max" validate:"omitempty,min=0"`
	Currency       *string  `json:"currency" validate:"omitempty,len=3"`
	TechStack      []string `json:"tech_stack" validate:"omitempty,max=30,dive,min=1,max=50"`
}

type PositionListQuery struct {
	Query    string `form:"q" json:"q" validate:"omitempty,max=100"`
	Location string `form:"location" json:"location" validate:"omitempty,max=100"`
	Remote   *bool  `form:"remote" json:"remote"`
	Tier     string `form:"tier" json:"tier" validate:"omitempty,is-listing-tier"`
	Status   string `form:"status" json:"status" validate:"omitempty,is-position-status"`
}

type PositionResponse struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Slug           string                `json:"slug"`
	Description    string                `json:"description"`
	Location       string                `json:"location"`
	Remote         bool                  `json:"remote"`
	EmploymentType string                `json:"employment_type"`
	SalaryMin      *int                  `json:"salary_min,omitempty"`
	SalaryMax      *int                  `json:"salary_max,omitempty"`
	Currency       string                `json:"currency,omitempty"`
	TechStack      []string              `json:"tech_stack"`
	Status         models.PositionStatus `json:"status"`
	Tier           models.ListingTier    `json:"tier"`
	IsFeatured     bool                  `json:"is_featured"`
	IsTop          bool                  `json:"is_top"`
	PublishedAt    *time.Time            `json:"published_at,omitempty"`
	ExpiresAt      *time.Time            `json:"expires_at,omitempty"`
	Company        *PositionCompany      `json:"company,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

type PositionCompany struct {
	Name     string `json:"name"`
	Website  string `json:"website,omitempty"`
	Location string `json:"location,omitempty"`
}

type PositionListResponse struct {
	Positions  []PositionResponse `json:"positions"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// SweepResponse - итог прогона истечения вакансий
type SweepResponse struct {
	Expired int `json:"expired"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
}

func NewPositionResponse(p *models.Position) PositionResponse {
	out := PositionResponse{
		ID:             p.ID,
		Title:          p.Title,
		Slug:           p.Slug,
		Description:    p.Description,
		Location:       p.Location,
		Remote:         p.Remote,
		EmploymentType: p.EmploymentType,
		SalaryMin:      p.SalaryMin,
		SalaryMax:      p.SalaryMax,
		Currency:       p.Currency,
		TechStack:      []string(p.TechStack),
		Status:         p.Status,
		Tier:           p.Tier,
		IsFeatured:     p.Tier.IsFeatured(),
		IsTop:          p.Tier.IsTop(),
		PublishedAt:    p.PublishedAt,
		ExpiresAt:      p.ExpiresAt,
		CreatedAt:      p.CreatedAt,
	}
	if out.TechStack == nil {
		out.TechStack = []string{}
	}
	if p.Owner != nil {
		out.Company = &PositionCompany{
			Name:     p.Owner.CompanyName,
			Website:  p.Owner.CompanyWebsite,
			Location: p.Owner.CompanyLocation,
		}
	}
	return out
}

func NewPositionListResponse(positions []models.Position, total int64, page, pageSize int) *PositionListResponse {
	out := &PositionListResponse{
		Positions: make([]PositionResponse, 0, len(positions)),
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}
	for i := range positions {
		out.Positions = append(out.Positions, NewPositionResponse(&positions[i]))
	}
	if pageSize > 0 {
		out.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return out
}
