package dto

import "jobboard_backend/internal/models"

type SelectRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,is-user-role"`
}

// DeleteAccountRequest - подтверждение удаления.
// Аккаунт с паролем подтверждает паролем, аккаунт только с соц. входом - своим email.
type DeleteAccountRequest struct {
	Password string `json:"password"`
	Email    string `json:"email"`
}

// RoleSelectionInfo - что показать на шаге выбора роли
type RoleSelectionInfo struct {
	Roles []models.UserRole `json:"roles"`
	User  UserDTO           `json:"user"`
}

// SocialLoginResult - итог входа через провайдера
type SocialLoginResult struct {
	User    *models.User
	Created bool
	Linked  bool
}
