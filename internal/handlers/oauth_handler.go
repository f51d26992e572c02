package handlers

import (
	"net/http"
	"net/url"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

// OAuthRedirects - страницы фронтенда для исхода соц. входа
type OAuthRedirects struct {
	LoginURL   string
	SuccessURL string
}

type OAuthHandler struct {
	*BaseHandler
	socialAuthService services.SocialAuthService
	authService       services.AuthService
	redirects         OAuthRedirects
}

func NewOAuthHandler(base *BaseHandler, socialAuthService services.SocialAuthService, authService services.AuthService, redirects OAuthRedirects) *OAuthHandler {
	return &OAuthHandler{
		BaseHandler:       base,
		socialAuthService: socialAuthService,
		authService:       authService,
		redirects:         redirects,
	}
}

func (h *OAuthHandler) RegisterRoutes(rg *gin.RouterGroup, guard *middleware.Guard) {
	oauth := rg.Group("/auth/oauth/:provider", h.requireProvider)
	{
		oauth.GET("", h.Begin)
		oauth.GET("/callback", h.Callback)
	}
}

// requireProvider: неизвестный или не настроенный провайдер -> 404.
// gothic читает имя провайдера из query-параметра provider.
func (h *OAuthHandler) requireProvider(c *gin.Context) {
	provider := models.OAuthProvider(c.Param("provider"))
	if !provider.IsSupported() || !auth.IsEnabled(provider) {
		apperrors.HandleError(c, apperrors.ErrProviderNotFound)
		return
	}

	q := c.Request.URL.Query()
	q.Set("provider", string(provider))
	c.Request.URL.RawQuery = q.Encode()
	c.Next()
}

func (h *OAuthHandler) Begin(c *gin.Context) {
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// Callback завершает обмен кода. Любая ошибка провайдера превращается
// в редирект на страницу входа с сообщением.
func (h *OAuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	provider := models.OAuthProvider(c.Param("provider"))

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		logger.CtxWithError(ctx, "OAuth exchange failed", err, "provider", provider)
		h.redirectToLogin(c, "Unable to sign in with "+string(provider)+". Please try again.")
		return
	}

	db := h.GetDB(c)
	result, err := h.socialAuthService.ResolveUser(ctx, db, services.SocialIdentity{
		Provider:   provider,
		ProviderID: gothUser.UserID,
		Email:      gothUser.Email,
		Name:       gothUser.Name,
	})
	if err != nil {
		logger.CtxWithError(ctx, "OAuth user resolution failed", err, "provider", provider)
		message := "Unable to sign in. Please try again."
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.HTTPCode < http.StatusInternalServerError {
			message = appErr.Message
		}
		h.redirectToLogin(c, message)
		return
	}

	tokens, err := h.authService.IssueTokens(db, result.User)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to issue tokens after OAuth login", err, "user_id", result.User.ID)
		h.redirectToLogin(c, "Unable to sign in. Please try again.")
		return
	}

	// токены во фрагменте: не попадают в логи сервера и Referer
	fragment := url.Values{}
	fragment.Set("token", tokens.AccessToken)
	fragment.Set("refresh_token", tokens.RefreshToken)
	if result.User.Role == nil {
		fragment.Set("needs_role_selection", "1")
	}
	c.Redirect(http.StatusFound, h.redirects.SuccessURL+"#"+fragment.Encode())
}

func (h *OAuthHandler) redirectToLogin(c *gin.Context, message string) {
	target, err := url.Parse(h.redirects.LoginURL)
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	q := target.Query()
	q.Set("error", message)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}
