package repositories

import (
	"errors"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileNotFound = errors.New("developer profile not found")

type DeveloperProfileRepository interface {
	FindByUserID(db *gorm.DB, userID string) (*models.DeveloperProfile, error)
	// Upsert создает профиль или обновляет текстовые поля существующего
	Upsert(db *gorm.DB, profile *models.DeveloperProfile) error
	UpdateFiles(db *gorm.DB, userID string, fields map[string]interface{}) error
	DeleteByUserID(db *gorm.DB, userID string) error
}

type developerProfileRepository struct{}

func NewDeveloperProfileRepository() DeveloperProfileRepository {
	return &developerProfileRepository{}
}

func (r *developerProfileRepository) FindByUserID(db *gorm.DB, userID string) (*models.DeveloperProfile, error) {
	var profile models.DeveloperProfile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *developerProfileRepository) Upsert(db *gorm.DB, profile *models.DeveloperProfile) error {
	profile.UpdatedAt = time.Now()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"headline", "summary", "location", "skills", "links", "updated_at"}),
	}).Create(profile).Error
}

func (r *developerProfileRepository) UpdateFiles(db *gorm.DB, userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := db.Model(&models.DeveloperProfile{}).Where("user_id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *developerProfileRepository) DeleteByUserID(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.DeveloperProfile{}).Error
}
