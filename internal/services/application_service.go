package services

import (
	"context"
	"errors"
	"time"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ApplicationService interface {
	Apply(db *gorm.DB, developerID, positionSlug string, req *dto.ApplyRequest) (*dto.ApplicationResponse, error)
	ListMine(db *gorm.DB, developerID string, page, pageSize int) (*dto.ApplicationListResponse, error)
	Withdraw(db *gorm.DB, developerID, applicationID string) error

	ListForPosition(ctx context.Context, db *gorm.DB, viewer *models.User, positionID string) (*dto.ApplicationListResponse, error)
	UpdateStatus(db *gorm.DB, viewer *models.User, applicationID string, status models.ApplicationStatus) (*dto.ApplicationResponse, error)
}

type applicationService struct {
	applicationRepo repositories.ApplicationRepository
	positionRepo    repositories.PositionRepository
	disks           *storage.Disks
	signedURLTTL    time.Duration
	now             func() time.Time
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	positionRepo repositories.PositionRepository,
	disks *storage.Disks,
	signedURLTTL time.Duration,
) ApplicationService {
	return &applicationService{
		applicationRepo: applicationRepo,
		positionRepo:    positionRepo,
		disks:           disks,
		signedURLTTL:    signedURLTTL,
		now:             time.Now,
	}
}

// Apply - отклик на опубликованную вакансию, один на пару (вакансия, разработчик)
func (s *applicationService) Apply(db *gorm.DB, developerID, positionSlug string, req *dto.ApplyRequest) (*dto.ApplicationResponse, error) {
	position, err := s.positionRepo.FindBySlug(db, positionSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrPositionNotFound) {
			return nil, apperrors.ErrPositionNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !position.IsPublished() || position.IsDue(s.now()) {
		return nil, apperrors.ErrPositionNotPublished
	}

	application := &models.Application{
		PositionID:  position.ID,
		DeveloperID: developerID,
		CoverLetter: req.CoverLetter,
		Status:      models.ApplicationStatusPending,
	}
	if err := s.applicationRepo.Create(db, application); err != nil {
		if errors.Is(err, repositories.ErrApplicationExists) {
			return nil, apperrors.ErrApplicationExists
		}
		return nil, apperrors.InternalError(err)
	}

	application.Position = position
	out := dto.NewApplicationResponse(application)
	return &out, nil
}

func (s *applicationService) ListMine(db *gorm.DB, developerID string, page, pageSize int) (*dto.ApplicationListResponse, error) {
	applications, total, err := s.applicationRepo.ListByDeveloper(db, developerID, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := &dto.ApplicationListResponse{
		Applications: make([]dto.ApplicationResponse, 0, len(applications)),
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	}
	for i := range applications {
		out.Applications = append(out.Applications, dto.NewApplicationResponse(&applications[i]))
	}
	return out, nil
}

// Withdraw - разработчик отзывает отклик, пока тот в статусе pending
func (s *applicationService) Withdraw(db *gorm.DB, developerID, applicationID string) error {
	ok, err := s.applicationRepo.DeleteIfPending(db, applicationID, developerID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if ok {
		return nil
	}

	application, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil || application.DeveloperID != developerID {
		return apperrors.ErrApplicationNotFound
	}
	return apperrors.ErrInvalidApplicationStatus
}

// ListForPosition - отклики для владельца вакансии или админа, CV по временной ссылке
func (s *applicationService) ListForPosition(ctx context.Context, db *gorm.DB, viewer *models.User, positionID string) (*dto.ApplicationListResponse, error) {
	position, err := s.positionRepo.FindByID(db, positionID)
	if err != nil {
		if errors.Is(err, repositories.ErrPositionNotFound) {
			return nil, apperrors.ErrPositionNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !canManage(viewer, position) {
		return nil, apperrors.ErrNotPositionOwner
	}

	applications, err := s.applicationRepo.ListByPosition(db, positionID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := &dto.ApplicationListResponse{
		Applications: make([]dto.ApplicationResponse, 0, len(applications)),
		Total:        int64(len(applications)),
	}
	for i := range applications {
		item := dto.NewApplicationResponse(&applications[i])
		item.Applicant = s.buildApplicant(ctx, applications[i].Developer)
		out.Applications = append(out.Applications, item)
	}
	return out, nil
}

func (s *applicationService) UpdateStatus(db *gorm.DB, viewer *models.User, applicationID string, status models.ApplicationStatus) (*dto.ApplicationResponse, error) {
	application, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if application.Position == nil || !canManage(viewer, application.Position) {
		return nil, apperrors.ErrNotPositionOwner
	}

	ok, err := s.applicationRepo.UpdateStatus(db, applicationID, models.ApplicationSources(status), status)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidApplicationStatus
	}

	application.Status = status
	out := dto.NewApplicationResponse(application)
	return &out, nil
}

// buildApplicant - у удаленного пользователя данных нет, отдаем nil
func (s *applicationService) buildApplicant(ctx context.Context, developer *models.User) *dto.ApplicantDTO {
	if developer == nil {
		return nil
	}

	applicant := &dto.ApplicantDTO{
		ID:    developer.ID,
		Name:  developer.Name,
		Email: developer.Email,
	}

	profile := developer.DeveloperProfile
	if profile == nil {
		return applicant
	}
	applicant.Headline = profile.Headline
	applicant.Skills = []string(profile.Skills)

	if profile.CVPath != nil {
		url, err := s.disks.Private.GetSignedURL(ctx, *profile.CVPath, s.signedURLTTL)
		if err != nil {
			logger.CtxWithError(ctx, "Failed to sign CV url", err, "user_id", developer.ID)
		} else {
			applicant.CVURL = url
		}
	}
	if profile.PhotoPath != nil {
		if url, err := s.disks.Public.GetURL(ctx, *profile.PhotoPath); err == nil {
			applicant.PhotoURL = url
		}
	}
	return applicant
}

func canManage(viewer *models.User, position *models.Position) bool {
	if viewer == nil {
		return false
	}
	return viewer.ID == position.OwnerID || auth.IsAdmin(viewer)
}
