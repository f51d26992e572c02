package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPositionNotFound = errors.New("position not found")
	ErrSlugTaken        = errors.New("position slug already taken")
)

// tierOrder - top > featured > regular, веса берутся из ListingTier.Rank
var tierOrder = tierOrderClause()

func tierOrderClause() string {
	var b strings.Builder
	b.WriteString("CASE positions.tier")
	for _, tier := range models.ListingTiers {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", tier, tier.Rank())
	}
	b.WriteString(" ELSE 0 END DESC")
	return b.String()
}

type PositionFilter struct {
	Query    string
	Location string
	Remote   *bool
	Tier     models.ListingTier
	Status   models.PositionStatus
	OwnerID  string
	Page     int
	PageSize int
}

type PositionRepository interface {
	Create(db *gorm.DB, position *models.Position) error
	FindByID(db *gorm.DB, id string) (*models.Position, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Position, error)
	SlugExists(db *gorm.DB, slug string) (bool, error)
	Update(db *gorm.DB, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, id string) error

	// Transition - CAS по статусу: UPDATE ... WHERE id = ? AND status IN (from).
	// false означает, что строка уже была в другом статусе.
	Transition(db *gorm.DB, id string, from []models.PositionStatus, to models.PositionStatus, extra map[string]interface{}) (bool, error)
	// ExpireIfDue переводит published -> expired только если срок действительно вышел
	ExpireIfDue(db *gorm.DB, id string, now time.Time) (bool, error)
	FindDueForExpiry(db *gorm.DB, now time.Time) ([]models.Position, error)
	// FindExpiringBetween - published с expires_at в (from, to]
	FindExpiringBetween(db *gorm.DB, from, to time.Time) ([]models.Position, error)
	ArchiveOpenByOwner(db *gorm.DB, ownerID string) (int64, error)

	ListPublished(db *gorm.DB, filter PositionFilter, now time.Time) ([]models.Position, int64, error)
	List(db *gorm.DB, filter PositionFilter) ([]models.Position, int64, error)
}

type positionRepository struct{}

func NewPositionRepository() PositionRepository {
	return &positionRepository{}
}

func (r *positionRepository) Create(db *gorm.DB, position *models.Position) error {
	err := db.Create(position).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugTaken
	}
	return err
}

func (r *positionRepository) FindByID(db *gorm.DB, id string) (*models.Position, error) {
	var position models.Position
	if err := db.Preload("Owner").First(&position, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	return &position, nil
}

func (r *positionRepository) FindBySlug(db *gorm.DB, slug string) (*models.Position, error) {
	var position models.Position
	if err := db.Preload("Owner").First(&position, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	return &position, nil
}

func (r *positionRepository) SlugExists(db *gorm.DB, slug string) (bool, error) {
	var count int64
	err := db.Model(&models.Position{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *positionRepository) Update(db *gorm.DB, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := db.Model(&models.Position{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func (r *positionRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Position{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func (r *positionRepository) Transition(db *gorm.DB, id string, from []models.PositionStatus, to models.PositionStatus, extra map[string]interface{}) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}

	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	result := db.Model(&models.Position{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *positionRepository) ExpireIfDue(db *gorm.DB, id string, now time.Time) (bool, error) {
	result := db.Model(&models.Position{}).
		Where("id = ? AND status = ? AND expires_at IS NOT NULL AND expires_at <= ?", id, models.PositionStatusPublished, now).
		Updates(map[string]interface{}{
			"status":     models.PositionStatusExpired,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *positionRepository) FindDueForExpiry(db *gorm.DB, now time.Time) ([]models.Position, error) {
	var positions []models.Position
	err := db.Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.PositionStatusPublished, now).
		Order("expires_at ASC").
		Find(&positions).Error
	return positions, err
}

func (r *positionRepository) FindExpiringBetween(db *gorm.DB, from, to time.Time) ([]models.Position, error) {
	var positions []models.Position
	err := db.Where("status = ? AND expires_at > ? AND expires_at <= ?", models.PositionStatusPublished, from, to).
		Order("expires_at ASC").
		Find(&positions).Error
	return positions, err
}

func (r *positionRepository) ArchiveOpenByOwner(db *gorm.DB, ownerID string) (int64, error) {
	result := db.Model(&models.Position{}).
		Where("owner_id = ? AND status IN ?", ownerID, models.TransitionSources(models.PositionStatusArchived)).
		Updates(map[string]interface{}{
			"status":     models.PositionStatusArchived,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// ListPublished - публичная выдача: только published с неистекшим сроком
func (r *positionRepository) ListPublished(db *gorm.DB, filter PositionFilter, now time.Time) ([]models.Position, int64, error) {
	query := db.Model(&models.Position{}).
		Where("positions.status = ?", models.PositionStatusPublished).
		Where("positions.expires_at IS NULL OR positions.expires_at > ?", now)
	query = applyPositionFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var positions []models.Position
	err := query.Preload("Owner").
		Order(tierOrder).
		Order("positions.published_at DESC NULLS LAST").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&positions).Error
	return positions, total, err
}

// List - выдача для владельца и модерации, фильтр по статусу опционален
func (r *positionRepository) List(db *gorm.DB, filter PositionFilter) ([]models.Position, int64, error) {
	query := db.Model(&models.Position{})
	if filter.Status != "" {
		query = query.Where("positions.status = ?", filter.Status)
	}
	query = applyPositionFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var positions []models.Position
	err := query.Order("positions.created_at DESC").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&positions).Error
	return positions, total, err
}

func applyPositionFilter(query *gorm.DB, filter PositionFilter) *gorm.DB {
	if filter.OwnerID != "" {
		query = query.Where("positions.owner_id = ?", filter.OwnerID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(positions.title) LIKE ? OR lower(positions.description) LIKE ? OR ? = ANY(positions.tech_stack)", like, like, q)
	}
	if filter.Location != "" {
		query = query.Where("lower(positions.location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.Remote != nil {
		query = query.Where("positions.remote = ?", *filter.Remote)
	}
	if filter.Tier != "" {
		query = query.Where("positions.tier = ?", filter.Tier)
	}
	return query
}

func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 {
			page = 1
		}
		if pageSize <= 0 {
			pageSize = 20
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
