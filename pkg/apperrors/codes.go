package apperrors

// ErrorCode - машиночитаемый код ошибки, уходит клиенту в поле "code"
type ErrorCode string

const (
	// Системные
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Бизнес-логика
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeLimitExceeded    ErrorCode = "LIMIT_EXCEEDED"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// Аутентификация и авторизация
	CodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	CodeForbidden             ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken          ErrorCode = "INVALID_TOKEN"
	CodeRoleSelectionRequired ErrorCode = "ROLE_SELECTION_REQUIRED"
	CodeProfileIncomplete     ErrorCode = "PROFILE_INCOMPLETE"

	// Платежи
	CodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
)
