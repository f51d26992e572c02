package repositories

import (
	"errors"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists")
)

type ApplicationRepository interface {
	Create(db *gorm.DB, application *models.Application) error
	FindByID(db *gorm.DB, id string) (*models.Application, error)
	ListByDeveloper(db *gorm.DB, developerID string, page, pageSize int) ([]models.Application, int64, error)
	ListByPosition(db *gorm.DB, positionID string) ([]models.Application, error)
	// UpdateStatus - CAS по статусу, false если отклик уже в другом статусе
	UpdateStatus(db *gorm.DB, id string, from []models.ApplicationStatus, to models.ApplicationStatus) (bool, error)
	// DeleteIfPending удаляет отклик, пока HR его не рассмотрел
	DeleteIfPending(db *gorm.DB, id, developerID string) (bool, error)
}

type applicationRepository struct{}

func NewApplicationRepository() ApplicationRepository {
	return &applicationRepository{}
}

func (r *applicationRepository) Create(db *gorm.DB, application *models.Application) error {
	err := db.Create(application).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrApplicationExists
	}
	return err
}

func (r *applicationRepository) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	var application models.Application
	if err := db.Preload("Position").First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepository) ListByDeveloper(db *gorm.DB, developerID string, page, pageSize int) ([]models.Application, int64, error) {
	query := db.Model(&models.Application{}).Where("developer_id = ?", developerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var applications []models.Application
	err := query.Preload("Position").
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&applications).Error
	return applications, total, err
}

func (r *applicationRepository) ListByPosition(db *gorm.DB, positionID string) ([]models.Application, error) {
	var applications []models.Application
	err := db.Preload("Developer").
		Preload("Developer.DeveloperProfile").
		Where("position_id = ?", positionID).
		Order("created_at ASC").
		Find(&applications).Error
	return applications, err
}

func (r *applicationRepository) UpdateStatus(db *gorm.DB, id string, from []models.ApplicationStatus, to models.ApplicationStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	result := db.Model(&models.Application{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *applicationRepository) DeleteIfPending(db *gorm.DB, id, developerID string) (bool, error) {
	result := db.Where("id = ? AND developer_id = ? AND status = ?", id, developerID, models.ApplicationStatusPending).
		Delete(&models.Application{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
