package handlers

// AppHandlers содержит все хэндлеры приложения.
// FileHandler nil, если приватный диск не локальный.
type AppHandlers struct {
	AuthHandler        *AuthHandler
	OAuthHandler       *OAuthHandler
	AccountHandler     *AccountHandler
	ProfileHandler     *ProfileHandler
	CompanyHandler     *CompanyHandler
	PositionHandler    *PositionHandler
	ApplicationHandler *ApplicationHandler
	PaymentHandler     *PaymentHandler
	AdminHandler       *AdminHandler
	FileHandler        *FileHandler
	HealthHandler      *HealthHandler
}
