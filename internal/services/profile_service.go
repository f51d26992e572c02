package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"jobboard_backend/internal/imageprocessor"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UploadLimits - ограничения загрузок из конфига
type UploadLimits struct {
	CVMaxSize         int64
	CVAllowedTypes    []string
	PhotoMaxSize      int64
	PhotoAllowedTypes []string
	SignedURLTTL      time.Duration
}

type ProfileService interface {
	GetDeveloperProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.DeveloperProfileResponse, error)
	UpsertDeveloperProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpsertDeveloperProfileRequest) (*dto.DeveloperProfileResponse, error)
	UploadCV(ctx context.Context, db *gorm.DB, userID string, file io.Reader) (*dto.FileUploadResponse, error)
	DeleteCV(ctx context.Context, db *gorm.DB, userID string) error
	UploadPhoto(ctx context.Context, db *gorm.DB, userID string, file io.Reader) (*dto.FileUploadResponse, error)
	DeletePhoto(ctx context.Context, db *gorm.DB, userID string) error

	GetCompany(db *gorm.DB, userID string) (*dto.CompanyResponse, error)
	UpdateCompany(db *gorm.DB, userID string, req *dto.UpdateCompanyRequest) (*dto.CompanyResponse, error)
}

type profileService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.DeveloperProfileRepository
	disks       *storage.Disks
	images      *imageprocessor.Processor
	limits      UploadLimits
}

func NewProfileService(
	userRepo repositories.UserRepository,
	profileRepo repositories.DeveloperProfileRepository,
	disks *storage.Disks,
	images *imageprocessor.Processor,
	limits UploadLimits,
) ProfileService {
	return &profileService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		disks:       disks,
		images:      images,
		limits:      limits,
	}
}

func (s *profileService) GetDeveloperProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.DeveloperProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return s.buildProfileResponse(ctx, profile), nil
}

func (s *profileService) UpsertDeveloperProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpsertDeveloperProfileRequest) (*dto.DeveloperProfileResponse, error) {
	profile := &models.DeveloperProfile{
		UserID:   userID,
		Headline: strings.TrimSpace(req.Headline),
		Summary:  strings.TrimSpace(req.Summary),
		Location: strings.TrimSpace(req.Location),
		Skills:   normalizeTags(req.Skills),
		Links: datatypes.NewJSONType(models.ProfileLinks{
			GitHub:    req.Links.GitHub,
			LinkedIn:  req.Links.LinkedIn,
			Portfolio: req.Links.Portfolio,
			Website:   req.Links.Website,
		}),
	}

	if err := s.profileRepo.Upsert(db, profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// перечитываем, чтобы вернуть пути файлов существующего профиля
	return s.GetDeveloperProfile(ctx, db, userID)
}

// UploadCV кладет CV на приватный диск и заменяет предыдущий файл
func (s *profileService) UploadCV(ctx context.Context, db *gorm.DB, userID string, file io.Reader) (*dto.FileUploadResponse, error) {
	data, err := readLimited(file, s.limits.CVMaxSize)
	if err != nil {
		return nil, err
	}

	mtype := mimetype.Detect(data)
	if !mimeAllowed(mtype, s.limits.CVAllowedTypes) {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]string{"detected": mtype.String()})
	}

	profile, err := s.ensureProfile(db, userID)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("cv/%s/%s%s", userID, uuid.NewString(), mtype.Extension())
	contentType := baseMime(mtype)
	if err := s.disks.Private.Save(ctx, path, bytes.NewReader(data), contentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.profileRepo.UpdateFiles(db, userID, map[string]interface{}{"cv_path": path}); err != nil {
		s.deleteFile(ctx, s.disks.Private, path)
		return nil, apperrors.InternalError(err)
	}
	if profile.CVPath != nil {
		s.deleteFile(ctx, s.disks.Private, *profile.CVPath)
	}

	url, err := s.disks.Private.GetSignedURL(ctx, path, s.limits.SignedURLTTL)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.FileUploadResponse{
		Path:        path,
		URL:         url,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *profileService) DeleteCV(ctx context.Context, db *gorm.DB, userID string) error {
	return s.clearFile(ctx, db, userID, "cv_path", s.disks.Private, func(p *models.DeveloperProfile) *string { return p.CVPath })
}

// UploadPhoto уменьшает фото и кладет его на публичный диск
func (s *profileService) UploadPhoto(ctx context.Context, db *gorm.DB, userID string, file io.Reader) (*dto.FileUploadResponse, error) {
	data, err := readLimited(file, s.limits.PhotoMaxSize)
	if err != nil {
		return nil, err
	}

	mtype := mimetype.Detect(data)
	if !mimeAllowed(mtype, s.limits.PhotoAllowedTypes) {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]string{"detected": mtype.String()})
	}

	processed, err := s.images.Process(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]string{"error": err.Error()})
	}

	profile, err := s.ensureProfile(db, userID)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("photos/%s/%s%s", userID, uuid.NewString(), processed.Extension)
	if err := s.disks.Public.Save(ctx, path, bytes.NewReader(processed.Data), processed.ContentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.profileRepo.UpdateFiles(db, userID, map[string]interface{}{"photo_path": path}); err != nil {
		s.deleteFile(ctx, s.disks.Public, path)
		return nil, apperrors.InternalError(err)
	}
	if profile.PhotoPath != nil {
		s.deleteFile(ctx, s.disks.Public, *profile.PhotoPath)
	}

	url, err := s.disks.Public.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.FileUploadResponse{
		Path:        path,
		URL:         url,
		ContentType: processed.ContentType,
		Size:        int64(len(processed.Data)),
	}, nil
}

func (s *profileService) DeletePhoto(ctx context.Context, db *gorm.DB, userID string) error {
	return s.clearFile(ctx, db, userID, "photo_path", s.disks.Public, func(p *models.DeveloperProfile) *string { return p.PhotoPath })
}

func (s *profileService) GetCompany(db *gorm.DB, userID string) (*dto.CompanyResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("company", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewCompanyResponse(user), nil
}

func (s *profileService) UpdateCompany(db *gorm.DB, userID string, req *dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	err := s.userRepo.UpdateCompany(db, userID, map[string]interface{}{
		"company_name":        strings.TrimSpace(req.CompanyName),
		"company_website":     strings.TrimSpace(req.CompanyWebsite),
		"company_description": strings.TrimSpace(req.CompanyDescription),
		"company_location":    strings.TrimSpace(req.CompanyLocation),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("company", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return s.GetCompany(db, userID)
}

// ensureProfile создает пустой профиль, если загрузка идет раньше заполнения анкеты
func (s *profileService) ensureProfile(db *gorm.DB, userID string) (*models.DeveloperProfile, error) {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, apperrors.InternalError(err)
	}

	profile = &models.DeveloperProfile{UserID: userID}
	if err := s.profileRepo.Upsert(db, profile); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return profile, nil
}

func (s *profileService) clearFile(ctx context.Context, db *gorm.DB, userID, column string, disk storage.Storage, current func(*models.DeveloperProfile) *string) error {
	profile, err := s.profileRepo.FindByUserID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return apperrors.ErrProfileNotFound
		}
		return apperrors.InternalError(err)
	}

	path := current(profile)
	if path == nil {
		return nil
	}

	if err := s.profileRepo.UpdateFiles(db, userID, map[string]interface{}{column: nil}); err != nil {
		return apperrors.InternalError(err)
	}
	s.deleteFile(ctx, disk, *path)
	return nil
}

func (s *profileService) deleteFile(ctx context.Context, disk storage.Storage, path string) {
	if err := disk.Delete(ctx, path); err != nil {
		logger.CtxWithError(ctx, "Failed to delete stored file", err, "path", path)
	}
}

func (s *profileService) buildProfileResponse(ctx context.Context, profile *models.DeveloperProfile) *dto.DeveloperProfileResponse {
	links := profile.Links.Data()
	out := &dto.DeveloperProfileResponse{
		UserID:   profile.UserID,
		Headline: profile.Headline,
		Summary:  profile.Summary,
		Location: profile.Location,
		Skills:   []string(profile.Skills),
		Links: dto.ProfileLinksDTO{
			GitHub:    links.GitHub,
			LinkedIn:  links.LinkedIn,
			Portfolio: links.Portfolio,
			Website:   links.Website,
		},
		HasCV:      profile.CVPath != nil,
		IsComplete: strings.TrimSpace(profile.Summary) != "",
		UpdatedAt:  profile.UpdatedAt,
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	if profile.PhotoPath != nil {
		if url, err := s.disks.Public.GetURL(ctx, *profile.PhotoPath); err == nil {
			out.PhotoURL = url
		}
	}
	return out
}

// readLimited читает не больше max байт, превышение - ErrFileTooLarge
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, apperrors.NewBadRequestError("Failed to read uploaded file")
	}
	if int64(len(data)) > max {
		return nil, apperrors.ErrFileTooLarge.WithDetails(map[string]int64{"max_size": max})
	}
	if len(data) == 0 {
		return nil, apperrors.FieldError("file", "File is empty")
	}
	return data, nil
}

func mimeAllowed(mtype *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if mtype.Is(a) {
			return true
		}
	}
	return false
}

// baseMime отбрасывает параметры вроде "; charset=utf-8"
func baseMime(mtype *mimetype.MIME) string {
	base, _, _ := strings.Cut(mtype.String(), ";")
	return base
}

// normalizeTags - trim, без пустых и повторов, порядок сохраняется
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
