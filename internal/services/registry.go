package services

import "jobboard_backend/internal/storage"

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService        AuthService
	AccountService     AccountService
	SocialAuthService  SocialAuthService
	ProfileService     ProfileService
	PositionService    PositionService
	ApplicationService ApplicationService
	PaymentService     PaymentService
	Disks              *storage.Disks
}
