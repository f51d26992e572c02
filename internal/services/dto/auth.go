package dto

import (
	"time"

	"jobboard_backend/internal/models"
)

// RegisterRequest - регистрация по email и паролю.
// Роль можно выбрать сразу или позже через /account/role.
type RegisterRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=255"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8,max=72"`
	Role     models.UserRole `json:"role" validate:"omitempty,is-user-role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse - ответ с токенами
type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserDTO   `json:"user"`
}

// UserDTO - пользователь с флагами, по которым фронтенд решает, куда вести дальше
type UserDTO struct {
	ID                        string     `json:"id"`
	Name                      string     `json:"name"`
	Email                     string     `json:"email"`
	Role                      *string    `json:"role"`
	EmailVerifiedAt           *time.Time `json:"email_verified_at,omitempty"`
	HasPassword               bool       `json:"has_password"`
	NeedsRoleSelection        bool       `json:"needs_role_selection"`
	HasCompleteProfile        bool       `json:"has_complete_profile"`
	HasCompleteCompanyProfile bool       `json:"has_complete_company_profile"`
	CreatedAt                 time.Time  `json:"created_at"`
}

func NewUserDTO(user *models.User) UserDTO {
	out := UserDTO{
		ID:                        user.ID,
		Name:                      user.Name,
		Email:                     user.Email,
		EmailVerifiedAt:           user.EmailVerifiedAt,
		HasPassword:               user.HasPassword(),
		NeedsRoleSelection:        user.Role == nil,
		HasCompleteProfile:        user.HasCompleteProfile(),
		HasCompleteCompanyProfile: user.HasCompleteCompanyProfile(),
		CreatedAt:                 user.CreatedAt,
	}
	if user.Role != nil {
		role := string(*user.Role)
		out.Role = &role
	}
	return out
}
