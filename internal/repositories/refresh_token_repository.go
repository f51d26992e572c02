package repositories

import (
	"errors"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository хранит только sha256 от токена.
// Эти записи и есть "remember me" сессии пользователя.
type RefreshTokenRepository interface {
	Create(db *gorm.DB, token *models.RefreshToken) error
	FindByHash(db *gorm.DB, hash string) (*models.RefreshToken, error)
	DeleteByHash(db *gorm.DB, hash string) error
	DeleteByUserID(db *gorm.DB, userID string) error
	// CleanExpired возвращает число удаленных записей
	CleanExpired(db *gorm.DB, now time.Time) (int64, error)
}

type refreshTokenRepository struct{}

func NewRefreshTokenRepository() RefreshTokenRepository {
	return &refreshTokenRepository{}
}

func (r *refreshTokenRepository) Create(db *gorm.DB, token *models.RefreshToken) error {
	return db.Create(token).Error
}

func (r *refreshTokenRepository) FindByHash(db *gorm.DB, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := db.Where("token_hash = ?", hash).Take(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteByHash - одноразовое использование при ротации: второй вызов с тем же хэшем вернет ErrRefreshTokenNotFound
func (r *refreshTokenRepository) DeleteByHash(db *gorm.DB, hash string) error {
	res := db.Where("token_hash = ?", hash).Delete(&models.RefreshToken{})
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *refreshTokenRepository) DeleteByUserID(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) CleanExpired(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
