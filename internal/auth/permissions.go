package auth

import "jobboard_backend/internal/models"

// Decision - результат проверки роли
type Decision int

const (
	Allow Decision = iota
	// NeedsRoleSelection - роль еще не выбрана, пользователя отправляем на выбор роли
	NeedsRoleSelection
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case NeedsRoleSelection:
		return "needs_role_selection"
	default:
		return "forbidden"
	}
}

// CheckRole проверяет роль пользователя против списка разрешенных.
// Пустой список разрешает любую выбранную роль.
func CheckRole(user *models.User, allowed ...models.UserRole) Decision {
	if user == nil {
		return Forbidden
	}
	if user.Role == nil {
		return NeedsRoleSelection
	}
	if len(allowed) == 0 {
		return Allow
	}
	for _, role := range allowed {
		if *user.Role == role {
			return Allow
		}
	}
	return Forbidden
}

func IsAdmin(user *models.User) bool {
	return user != nil && user.HasRole(models.UserRoleAdmin)
}
