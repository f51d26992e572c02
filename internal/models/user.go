package models

import (
	"strings"
	"time"
)

type User struct {
	BaseModelWithDeleted
	Name  string `gorm:"not null"`
	Email string `gorm:"not null"`
	// nil для аккаунтов только с соц. входом
	PasswordHash    *string
	EmailVerifiedAt *time.Time
	// nil до выбора роли
	Role         *UserRole    `gorm:"type:varchar(20)"`
	AccountState AccountState `gorm:"type:varchar(20);not null;default:'active'"`

	// Данные компании, заполняются только HR
	CompanyName        string
	CompanyWebsite     string
	CompanyDescription string
	CompanyLocation    string

	// Relations
	DeveloperProfile *DeveloperProfile `gorm:"foreignKey:UserID"`
	SocialAccounts   []SocialAccount   `gorm:"foreignKey:UserID"`
	RefreshTokens    []RefreshToken    `gorm:"foreignKey:UserID"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	TokenHash string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}

// HasRole - роль выбрана и совпадает
func (u *User) HasRole(role UserRole) bool {
	return u.Role != nil && *u.Role == role
}

func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return string(*u.Role)
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) IsAnonymized() bool {
	return u.AccountState == AccountStateAnonymized
}

// HasCompleteProfile - профиль разработчика с заполненным summary.
// Требует предзагруженного DeveloperProfile.
func (u *User) HasCompleteProfile() bool {
	return u.DeveloperProfile != nil && strings.TrimSpace(u.DeveloperProfile.Summary) != ""
}

// HasCompleteCompanyProfile - у HR заполнены название и описание компании
func (u *User) HasCompleteCompanyProfile() bool {
	return strings.TrimSpace(u.CompanyName) != "" && strings.TrimSpace(u.CompanyDescription) != ""
}
