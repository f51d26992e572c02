package validator

import (
	"log"

	"jobboard_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные правила для DTO
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// без правил приложение запускать нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-user-role': только роли, которые пользователь выбирает сам
	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-position-status", validatePositionStatus)
	mustRegister("is-listing-tier", validateListingTier)
	mustRegister("is-application-status", validateApplicationStatus)
	mustRegister("is-oauth-provider", validateOAuthProvider)
}

// Пустые значения пропускаем, для них есть 'required'

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.UserRole(value).IsSelectable()
}

func validatePositionStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.PositionStatus(value).IsValid()
}

func validateListingTier(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ListingTier(value).IsValid()
}

func validateApplicationStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ApplicationStatus(value).IsValid()
}

func validateOAuthProvider(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.OAuthProvider(value).IsSupported()
}
