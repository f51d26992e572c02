package repositories

import (
	"errors"
	"strings"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	// FindByIDUnscoped находит и мягко удаленных пользователей
	FindByIDUnscoped(db *gorm.DB, id string) (*models.User, error)
	Create(db *gorm.DB, user *models.User) error
	// SetRoleIfEmpty назначает роль только если она еще не выбрана
	SetRoleIfEmpty(db *gorm.DB, userID string, role models.UserRole) (bool, error)
	UpdateCompany(db *gorm.DB, userID string, fields map[string]interface{}) error
	MarkEmailVerified(db *gorm.DB, userID string, at time.Time) error
	Anonymize(db *gorm.DB, userID, name, email string) error
	SoftDelete(db *gorm.DB, userID string) error
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Preload("DeveloperProfile").First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Preload("DeveloperProfile").
		First(&user, "lower(email) = ?", strings.ToLower(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDUnscoped(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Unscoped().First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	err := db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserAlreadyExists
	}
	return err
}

func (r *userRepository) SetRoleIfEmpty(db *gorm.DB, userID string, role models.UserRole) (bool, error) {
	result := db.Model(&models.User{}).
		Where("id = ? AND role IS NULL", userID).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *userRepository) UpdateCompany(db *gorm.DB, userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) MarkEmailVerified(db *gorm.DB, userID string, at time.Time) error {
	return db.Model(&models.User{}).
		Where("id = ? AND email_verified_at IS NULL", userID).
		Update("email_verified_at", at).Error
}

// Anonymize перезаписывает персональные данные заглушками
func (r *userRepository) Anonymize(db *gorm.DB, userID, name, email string) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"name":                name,
		"email":               email,
		"password_hash":       nil,
		"email_verified_at":   nil,
		"account_state":       models.AccountStateAnonymized,
		"company_name":        "",
		"company_website":     "",
		"company_description": "",
		"company_location":    "",
		"updated_at":          time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SoftDelete(db *gorm.DB, userID string) error {
	result := db.Where("id = ?", userID).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
