package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные ошибки предметной области.
Сервисы возвращают их напрямую, хендлеры отдают через HandleError.
*/

// ErrNotFound - фабрика для "не найдено" поверх ошибки репозитория
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Auth ---

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrForbidden = New(
	CodeForbidden,
	"auth",
	"You are not allowed to access this resource",
	http.StatusForbidden,
)

// ErrRoleAlreadySelected - роль выбирается только один раз
var ErrRoleAlreadySelected = New(
	CodeConflict,
	"account",
	"Role has already been selected",
	http.StatusConflict,
)

var ErrAccountDeleted = New(
	CodeForbidden,
	"account",
	"Account has been deleted",
	http.StatusForbidden,
)

// --- OAuth ---

var ErrProviderNotFound = New(
	CodeNotFound,
	"oauth",
	"OAuth provider not supported",
	http.StatusNotFound,
)

var ErrSocialEmailMissing = New(
	CodeInvalidOperation,
	"oauth",
	"Provider did not return an email address",
	http.StatusBadRequest,
)

// --- Profiles & uploads ---

var ErrProfileNotFound = New(
	CodeNotFound,
	"profile",
	"Developer profile not found",
	http.StatusNotFound,
)

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// --- Positions ---

var ErrPositionNotFound = New(
	CodeNotFound,
	"position",
	"Position not found",
	http.StatusNotFound,
)

// ErrInvalidPositionTransition - условное обновление статуса не затронуло строку
var ErrInvalidPositionTransition = New(
	CodeInvalidStatus,
	"position",
	"Operation not allowed for the current position status",
	http.StatusConflict,
)

var ErrPositionNotPublished = New(
	CodeInvalidStatus,
	"position",
	"Position is not open for applications",
	http.StatusConflict,
)

var ErrNotPositionOwner = New(
	CodeForbidden,
	"position",
	"You do not own this position",
	http.StatusForbidden,
)

// --- Applications ---

var ErrApplicationNotFound = New(
	CodeNotFound,
	"application",
	"Application not found",
	http.StatusNotFound,
)

var ErrApplicationExists = New(
	CodeAlreadyExists,
	"application",
	"You have already applied to this position",
	http.StatusConflict,
)

var ErrInvalidApplicationStatus = New(
	CodeInvalidStatus,
	"application",
	"Operation not allowed for the current application status",
	http.StatusConflict,
)

// --- Listing tiers & payments ---

var ErrInvalidTier = New(
	CodeValidationFailed,
	"payment",
	"Unknown listing tier",
	http.StatusBadRequest,
)

var ErrPaymentProviderNotFound = New(
	CodeNotFound,
	"payment",
	"Payment provider is not configured",
	http.StatusNotFound,
)

var ErrPaymentNotFound = New(
	CodeNotFound,
	"payment",
	"Payment not found",
	http.StatusNotFound,
)

var ErrPaymentSignature = New(
	CodeInvalidSignature,
	"payment",
	"Invalid webhook signature",
	http.StatusBadRequest,
)
