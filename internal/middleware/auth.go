package middleware

import (
	"errors"
	"net/http"
	"strings"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/pkg/apperrors"
	"jobboard_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Redirects - куда гейты отправляют пользователя
type Redirects struct {
	RoleSelection string
	ProfileSetup  string
	CompanySetup  string
}

const (
	warningRoleSelection   = "Please choose whether you are a developer or a recruiter to continue."
	warningProfileSetup    = "Please complete your developer profile before continuing."
	warningCompanyRequired = "Please complete your company profile before continuing."
)

// Guard загружает текущего пользователя один раз на запрос и проверяет доступ
type Guard struct {
	userRepo  repositories.UserRepository
	tokens    *auth.TokenManager
	redirects Redirects
}

func NewGuard(userRepo repositories.UserRepository, tokens *auth.TokenManager, redirects Redirects) *Guard {
	return &Guard{
		userRepo:  userRepo,
		tokens:    tokens,
		redirects: redirects,
	}
}

// Authenticate проверяет Bearer-токен и кладет пользователя в контекст.
// Роль берется из базы, а не из токена: она меняется после выбора роли.
func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := g.tokens.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		db, ok := c.MustGet(string(contextkeys.DBContextKey)).(*gorm.DB)
		if !ok {
			apperrors.HandleError(c, apperrors.InternalError(errors.New("db is not configured for request")))
			return
		}

		user, err := g.userRepo.FindByID(db, claims.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				// пользователь удален после выдачи токена
				apperrors.HandleError(c, apperrors.ErrInvalidToken)
				return
			}
			apperrors.HandleError(c, apperrors.InternalError(err))
			return
		}

		c.Set(string(contextkeys.UserIDKey), user.ID)
		c.Set(string(contextkeys.CurrentUserKey), user)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// OptionalAuthenticate - для публичных маршрутов: без заголовка запрос идет анонимно,
// с заголовком проверяется как в Authenticate.
func (g *Guard) OptionalAuthenticate() gin.HandlerFunc {
	authenticate := g.Authenticate()
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authenticate(c)
	}
}

// RequireRoles - гейт по ролям. Без роли -> на выбор роли, чужая роль -> 403.
func (g *Guard) RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}

		switch auth.CheckRole(user, roles...) {
		case auth.Allow:
			c.Next()
		case auth.NeedsRoleSelection:
			redirectWithWarning(c, g.redirects.RoleSelection, apperrors.CodeRoleSelectionRequired, warningRoleSelection)
		default:
			logger.CtxWarn(c.Request.Context(), "Role gate denied request",
				"role", user.RoleName(),
				"path", c.Request.URL.Path,
			)
			apperrors.HandleError(c, apperrors.ErrForbidden)
		}
	}
}

// RequireCompleteProfile - для разработчика без заполненного профиля редирект на его заполнение.
// Остальные роли проходят без проверки.
func (g *Guard) RequireCompleteProfile() gin.HandlerFunc {
	return g.completenessGate(models.UserRoleDeveloper, (*models.User).HasCompleteProfile, g.redirects.ProfileSetup, warningProfileSetup)
}

// RequireCompleteCompanyProfile - то же для HR и данных компании
func (g *Guard) RequireCompleteCompanyProfile() gin.HandlerFunc {
	return g.completenessGate(models.UserRoleHR, (*models.User).HasCompleteCompanyProfile, g.redirects.CompanySetup, warningCompanyRequired)
}

func (g *Guard) completenessGate(role models.UserRole, complete func(*models.User) bool, target, warning string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.HasRole(role) || complete(user) {
			c.Next()
			return
		}
		redirectWithWarning(c, target, apperrors.CodeProfileIncomplete, warning)
	}
}

// redirectWithWarning - 302 с Location и телом, которое API-клиент может показать пользователю
func redirectWithWarning(c *gin.Context, target string, code apperrors.ErrorCode, warning string) {
	c.Header("Location", target)
	c.AbortWithStatusJSON(http.StatusFound, gin.H{
		"code":     code,
		"redirect": target,
		"warning":  warning,
	})
}

// CurrentUser - пользователь, загруженный Authenticate
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, exists := c.Get(string(contextkeys.CurrentUserKey))
	if !exists {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok && user != nil
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(string(contextkeys.UserIDKey))
	if !exists {
		return ""
	}

	id, ok := userID.(string)
	if !ok {
		return ""
	}

	return id
}
