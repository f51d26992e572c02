package models

// SocialAccount - связь пользователя с внешней учетной записью.
// Пара (provider, provider_id) уникальна.
type SocialAccount struct {
	BaseModel
	UserID     string        `gorm:"type:uuid;not null;index"`
	Provider   OAuthProvider `gorm:"type:varchar(20);not null;uniqueIndex:idx_social_provider_id"`
	ProviderID string        `gorm:"not null;uniqueIndex:idx_social_provider_id"`
	Email      string
}
