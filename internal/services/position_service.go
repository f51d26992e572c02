package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/notifications"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const maxSlugAttempts = 5

// SweepResult - итог одного прогона истечения вакансий
type SweepResult struct {
	Expired int
	Warned  int
	Failed  int
}

type PositionService interface {
	Create(db *gorm.DB, ownerID string, req *dto.CreatePositionRequest) (*dto.PositionResponse, error)
	Update(db *gorm.DB, ownerID, positionID string, req *dto.UpdatePositionRequest) (*dto.PositionResponse, error)
	Archive(db *gorm.DB, ownerID, positionID string) (*dto.PositionResponse, error)
	GetOwned(db *gorm.DB, ownerID, positionID string) (*dto.PositionResponse, error)
	ListOwn(db *gorm.DB, ownerID string, query *dto.PositionListQuery, page, pageSize int) (*dto.PositionListResponse, error)

	ListPublic(db *gorm.DB, query *dto.PositionListQuery, page, pageSize int) (*dto.PositionListResponse, error)
	// GetBySlug: опубликованная вакансия видна всем, остальные только владельцу и админу
	GetBySlug(db *gorm.DB, slug string, viewer *models.User) (*dto.PositionResponse, error)

	AdminList(db *gorm.DB, query *dto.PositionListQuery, page, pageSize int) (*dto.PositionListResponse, error)
	Publish(db *gorm.DB, positionID string) (*dto.PositionResponse, error)
	Unpublish(db *gorm.DB, positionID string) (*dto.PositionResponse, error)
	AdminArchive(db *gorm.DB, positionID string) (*dto.PositionResponse, error)
	Restore(db *gorm.DB, positionID string) (*dto.PositionResponse, error)
	Delete(db *gorm.DB, positionID string) error

	// PublishPaid публикует или продлевает вакансию после оплаты тарифа
	PublishPaid(db *gorm.DB, positionID string, tier models.ListingTier, reference string, now time.Time) (*models.Position, error)

	ExpirePositions(ctx context.Context, db *gorm.DB, now time.Time) (*SweepResult, error)
}

type positionService struct {
	positionRepo    repositories.PositionRepository
	notifier        notifications.Notifier
	listingDuration time.Duration
	warningWindow   time.Duration
	now             func() time.Time
}

func NewPositionService(
	positionRepo repositories.PositionRepository,
	notifier notifications.Notifier,
	listingDuration time.Duration,
	warningWindow time.Duration,
) PositionService {
	return &positionService{
		positionRepo:    positionRepo,
		notifier:        notifier,
		listingDuration: listingDuration,
		warningWindow:   warningWindow,
		now:             time.Now,
	}
}

// Create - новая вакансия всегда начинает с draft
func (s *positionService) Create(db *gorm.DB, ownerID string, req *dto.CreatePositionRequest) (*dto.PositionResponse, error) {
	if err := validateSalary(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}

	position := &models.Position{
		OwnerID:        ownerID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Location:       strings.TrimSpace(req.Location),
		Remote:         req.Remote,
		EmploymentType: req.EmploymentType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Currency:       strings.ToUpper(req.Currency),
		TechStack:      normalizeTags(req.TechStack),
		Status:         models.PositionStatusDraft,
		Tier:           models.ListingTierRegular,
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		candidate, err := s.slugFor(db, position.Title, attempt)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		position.Slug = candidate

		err = s.positionRepo.Create(db, position)
		if err == nil {
			out := dto.NewPositionResponse(position)
			return &out, nil
		}
		// slug заняли между проверкой и вставкой, пробуем другой
		if !errors.Is(err, repositories.ErrSlugTaken) {
			return nil, apperrors.InternalError(err)
		}
	}
	return nil, apperrors.ErrConflict(repositories.ErrSlugTaken, "position", "Could not generate a unique slug")
}

// slugFor - slug из заголовка, при коллизии с коротким суффиксом
func (s *positionService) slugFor(db *gorm.DB, title string, attempt int) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "position"
	}
	if attempt == 0 {
		exists, err := s.positionRepo.SlugExists(db, base)
		if err != nil || !exists {
			return base, err
		}
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:6]), nil
}

func (s *positionService) Update(db *gorm.DB, ownerID, positionID string, req *dto.UpdatePositionRequest) (*dto.PositionResponse, error) {
	position, err := s.findOwned(db, ownerID, positionID)
	if err != nil {
		return nil, err
	}

	switch position.Status {
	case models.PositionStatusDraft, models.PositionStatusPublished:
	default:
		return nil, apperrors.ErrInvalidPositionTransition
	}

	salaryMin, salaryMax := position.SalaryMin, position.SalaryMax
	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Location != nil {
		fields["location"] = strings.TrimSpace(*req.Location)
	}
	if req.Remote != nil {
		fields["remote"] = *req.Remote
	}
	if req.EmploymentType != nil {
		fields["employment_type"] = *req.EmploymentType
	}
	if req.SalaryMin != nil {
		fields["salary_min"] = *req.SalaryMin
		salaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		fields["salary_max"] = *req.SalaryMax
		salaryMax = req.SalaryMax
	}
	if req.Currency != nil {
		fields["currency"] = strings.ToUpper(*req.Currency)
	}
	if req.TechStack != nil {
		fields["tech_stack"] = pq.StringArray(normalizeTags(req.TechStack))
	}

	if err := validateSalary(salaryMin, salaryMax); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		out := dto.NewPositionResponse(position)
		return &out, nil
	}

	if err := s.positionRepo.Update(db, positionID, fields); err != nil {
		return nil, s.mapRepoError(err)
	}
	return s.reload(db, positionID)
}

func (s *positionService) Archive(db *gorm.DB, ownerID, positionID string) (*dto.PositionResponse, error) {
	if _, err := s.findOwned(db, ownerID, positionID); err != nil {
		return nil, err
	}
	return s.transition(db, positionID, models.PositionStatusArchived, nil)
}

func (s *positionService) GetOwned(db *gorm.DB, ownerID, positionID string) (*dto.PositionResponse, error) {
	position, err := s.findOwned(db, ownerID, positionID)
	if err != nil {
		return nil, err
	}
	out := dto.NewPositionResponse(position)
	return &out, nil
}

func (s *positionService) ListOwn(db *gorm.DB, ownerID string, query *dto.PositionListQuery, page, pageSize int) (*dto.PositionListResponse, error) {
	filter := toFilter(query, page, pageSize)
	filter.OwnerID = ownerID
	filter.Status = models.PositionStatus(query.Status)

	positions, total, err := s.positionRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPositionListResponse(positions, total, page, pageSize), nil
}

func (s *positionService) ListPublic(db *gorm.DB, query *dto.PositionListQuery, page, pageSize int) (*dto.PositionListResponse, error) {
	positions, total, err := s.positionRepo.ListPublished(db, toFilter(query, page, pageSize), s.now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPositionListResponse(positions, total, page, pageSize), nil
}

func (s *positionService) GetBySlug(db *gorm.DB, positionSlug string, viewer *models.User) (*dto.PositionResponse, error) {
	position, err := s.positionRepo.FindBySlug(db, positionSlug)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	visible := position.IsPublished() && !position.IsDue(s.now())
	if !visible && viewer != nil {
		visible = viewer.ID == position.OwnerID || auth.IsAdmin(viewer)
	}
	if !visible {
		return nil, apperrors.ErrPositionNotFound
	}

	out := dto.NewPositionResponse(position)
	return &out, nil
}

func (s *positionService) AdminList(db *gorm.DB, query *dto.PositionListQuery, page, pageSize int) (*dto.PositionListResponse, error) {
	filter := toFilter(query, page, pageSize)
	filter.Status = models.PositionStatus(query.Status)

	positions, total, err := s.positionRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPositionListResponse(positions, total, page, pageSize), nil
}

// Publish: draft|expired -> published, срок размещения отсчитывается заново
func (s *positionService) Publish(db *gorm.DB, positionID string) (*dto.PositionResponse, error) {
	now := s.now()
	return s.transition(db, positionID, models.PositionStatusPublished, map[string]interface{}{
		"published_at": now,
		"expires_at":   now.Add(s.listingDuration),
	})
}

func (s *positionService) Unpublish(db *gorm.DB, positionID string) (*dto.PositionResponse, error) {
	return s.transition(db, positionID, models.PositionStatusDraft, map[string]interface{}{
		"expires_at": nil,
	})
}

func (s *positionService) AdminArchive(db *gorm.DB, positionID string) (*dto.PositionResponse, error) {
	return s.transition(db, positionID, models.PositionStatusArchived, nil)
}

func (s *positionService) Restore(db *gorm.DB, positionID string) (*dto.PositionResponse, error) {
	return s.transition(db, positionID, models.PositionStatusDraft, map[string]interface{}{
		"expires_at": nil,
	})
}

func (s *positionService) Delete(db *gorm.DB, positionID string) error {
	if err := s.positionRepo.Delete(db, positionID); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

func (s *positionService) PublishPaid(db *gorm.DB, positionID string, tier models.ListingTier, reference string, now time.Time) (*models.Position, error) {
	extra := map[string]interface{}{
		"tier":              tier,
		"payment_reference": reference,
		"published_at":      now,
		"expires_at":        now.Add(s.listingDuration),
	}

	ok, err := s.positionRepo.Transition(db, positionID, models.TransitionSources(models.PositionStatusPublished), models.PositionStatusPublished, extra)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		// уже опубликована: продлеваем срок и меняем тариф, published_at не трогаем
		delete(extra, "published_at")
		ok, err = s.positionRepo.Transition(db, positionID, []models.PositionStatus{models.PositionStatusPublished}, models.PositionStatusPublished, extra)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if !ok {
		return nil, s.transitionError(db, positionID)
	}

	position, err := s.positionRepo.FindByID(db, positionID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return position, nil
}

// ExpirePositions - периодический прогон.
// Каждая вакансия переводится условным обновлением, поэтому параллельные
// и повторные прогоны безопасны. Ошибка по одной вакансии не останавливает остальные.
func (s *positionService) ExpirePositions(ctx context.Context, db *gorm.DB, now time.Time) (*SweepResult, error) {
	due, err := s.positionRepo.FindDueForExpiry(db, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions due for expiry: %w", err)
	}

	result := &SweepResult{}
	for i := range due {
		position := &due[i]

		ok, err := s.positionRepo.ExpireIfDue(db, position.ID, now)
		if err != nil {
			result.Failed++
			logger.CtxWithError(ctx, "Failed to expire position", err, "position_id", position.ID)
			continue
		}
		if !ok {
			// статус или срок успели поменять
			continue
		}
		result.Expired++

		position.Status = models.PositionStatusExpired
		if err := s.notifier.PositionExpired(ctx, position); err != nil {
			result.Failed++
			logger.CtxWithError(ctx, "Failed to notify about expired position", err, "position_id", position.ID)
		}
	}

	if s.warningWindow > 0 {
		expiring, err := s.positionRepo.FindExpiringBetween(db, now, now.Add(s.warningWindow))
		if err != nil {
			result.Failed++
			logger.CtxWithError(ctx, "Failed to load positions expiring soon", err)
		}
		for i := range expiring {
			if err := s.notifier.PositionExpiringSoon(ctx, &expiring[i]); err != nil {
				result.Failed++
				logger.CtxWithError(ctx, "Failed to notify about expiring position", err, "position_id", expiring[i].ID)
				continue
			}
			result.Warned++
		}
	}

	logger.CtxInfo(ctx, "Position expiry sweep finished",
		"expired", result.Expired,
		"warned", result.Warned,
		"failed", result.Failed,
	)
	return result, nil
}

func (s *positionService) transition(db *gorm.DB, positionID string, to models.PositionStatus, extra map[string]interface{}) (*dto.PositionResponse, error) {
	ok, err := s.positionRepo.Transition(db, positionID, models.TransitionSources(to), to, extra)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		return nil, s.transitionError(db, positionID)
	}
	return s.reload(db, positionID)
}

// transitionError различает отсутствующую вакансию и недопустимый переход
func (s *positionService) transitionError(db *gorm.DB, positionID string) error {
	if _, err := s.positionRepo.FindByID(db, positionID); err != nil {
		return s.mapRepoError(err)
	}
	return apperrors.ErrInvalidPositionTransition
}

func (s *positionService) reload(db *gorm.DB, positionID string) (*dto.PositionResponse, error) {
	position, err := s.positionRepo.FindByID(db, positionID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	out := dto.NewPositionResponse(position)
	return &out, nil
}

func (s *positionService) findOwned(db *gorm.DB, ownerID, positionID string) (*models.Position, error) {
	position, err := s.positionRepo.FindByID(db, positionID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if position.OwnerID != ownerID {
		return nil, apperrors.ErrNotPositionOwner
	}
	return position, nil
}

func (s *positionService) mapRepoError(err error) error {
	if errors.Is(err, repositories.ErrPositionNotFound) {
		return apperrors.ErrPositionNotFound
	}
	return apperrors.InternalError(err)
}

func toFilter(query *dto.PositionListQuery, page, pageSize int) repositories.PositionFilter {
	return repositories.PositionFilter{
		Query:    query.Query,
		Location: query.Location,
		Remote:   query.Remote,
		Tier:     models.ListingTier(query.Tier),
		Page:     page,
		PageSize: pageSize,
	}
}

func validateSalary(salaryMin, salaryMax *int) error {
	if salaryMin != nil && salaryMax != nil && *salaryMax < *salaryMin {
		return apperrors.FieldError("salary_max", "Must be greater than or equal to salary_min")
	}
	return nil
}
