package auth

import (
	"net/http"

	"jobboard_backend/internal/config"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"github.com/markbates/goth/providers/linkedin"
)

// InitProviders регистрирует в goth провайдеров, для которых заданы ключи.
// Возвращает список включенных провайдеров.
func InitProviders(cfg *config.Config) []models.OAuthProvider {
	// gothic хранит state между redirect и callback в своей cookie-сессии
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	goth.ClearProviders()

	var providers []goth.Provider
	var enabled []models.OAuthProvider

	if p := cfg.OAuth.GitHub; p.Enabled() {
		providers = append(providers, github.New(p.ClientID, p.ClientSecret, p.CallbackURL, "read:user", "user:email"))
		enabled = append(enabled, models.OAuthProviderGitHub)
	}
	if p := cfg.OAuth.Google; p.Enabled() {
		providers = append(providers, google.New(p.ClientID, p.ClientSecret, p.CallbackURL, "email", "profile"))
		enabled = append(enabled, models.OAuthProviderGoogle)
	}
	if p := cfg.OAuth.LinkedIn; p.Enabled() {
		providers = append(providers, linkedin.New(p.ClientID, p.ClientSecret, p.CallbackURL, "r_liteprofile", "r_emailaddress"))
		enabled = append(enabled, models.OAuthProviderLinkedIn)
	}

	if len(providers) == 0 {
		logger.Warn("No OAuth providers configured, social login is disabled")
		return nil
	}

	goth.UseProviders(providers...)
	logger.Info("OAuth providers initialized", "providers", enabled)
	return enabled
}

// IsEnabled - провайдер поддерживается и зарегистрирован в goth
func IsEnabled(provider models.OAuthProvider) bool {
	if !provider.IsSupported() {
		return false
	}
	_, err := goth.GetProvider(string(provider))
	return err == nil
}
