package models

import "time"

// Payment - оплата размещения вакансии в выбранном тарифе
type Payment struct {
	BaseModel
	Reference         string        `gorm:"not null;uniqueIndex"`
	PositionID        string        `gorm:"type:uuid;not null;index"`
	UserID            string        `gorm:"type:uuid;not null;index"`
	Provider          string        `gorm:"type:varchar(50);not null"`
	Tier              ListingTier   `gorm:"type:varchar(20);not null"`
	Amount            int64         `gorm:"not null"`
	Currency          string        `gorm:"type:varchar(3);not null"`
	Status            PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ProviderPaymentID *string
	PaidAt            *time.Time
}
