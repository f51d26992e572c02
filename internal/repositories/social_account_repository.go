package repositories

import (
	"errors"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSocialAccountNotFound = errors.New("social account not found")
	ErrSocialAccountExists   = errors.New("social account already linked")
)

type SocialAccountRepository interface {
	FindByProvider(db *gorm.DB, provider models.OAuthProvider, providerID string) (*models.SocialAccount, error)
	ListByUserID(db *gorm.DB, userID string) ([]models.SocialAccount, error)
	Create(db *gorm.DB, account *models.SocialAccount) error
	DeleteByUserID(db *gorm.DB, userID string) error
}

type socialAccountRepository struct{}

func NewSocialAccountRepository() SocialAccountRepository {
	return &socialAccountRepository{}
}

func (r *socialAccountRepository) FindByProvider(db *gorm.DB, provider models.OAuthProvider, providerID string) (*models.SocialAccount, error) {
	var account models.SocialAccount
	err := db.Where("provider = ? AND provider_id = ?", provider, providerID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSocialAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *socialAccountRepository) ListByUserID(db *gorm.DB, userID string) ([]models.SocialAccount, error) {
	var accounts []models.SocialAccount
	err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (r *socialAccountRepository) Create(db *gorm.DB, account *models.SocialAccount) error {
	err := db.Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSocialAccountExists
	}
	return err
}

func (r *socialAccountRepository) DeleteByUserID(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.SocialAccount{}).Error
}
