package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// DBContextKey - *gorm.DB (пул или транзакция) запроса
	DBContextKey = contextKey("db")

	// CurrentUserKey - *models.User, загруженный AuthMiddleware
	CurrentUserKey = contextKey("current_user")

	// UserIDKey - ID пользователя из access-токена
	UserIDKey = contextKey("userID")
)
