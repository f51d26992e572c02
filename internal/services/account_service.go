package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	deletedUserName    = "Deleted User"
	deletedEmailDomain = "deleted.local"
)

type AccountService interface {
	Me(db *gorm.DB, userID string) (*dto.UserDTO, error)
	RoleSelection(db *gorm.DB, userID string) (*dto.RoleSelectionInfo, error)
	SelectRole(db *gorm.DB, userID string, role models.UserRole) (*dto.UserDTO, error)
	DeleteAccount(ctx context.Context, db *gorm.DB, userID string, req *dto.DeleteAccountRequest) error
}

type accountService struct {
	userRepo          repositories.UserRepository
	refreshTokenRepo  repositories.RefreshTokenRepository
	profileRepo       repositories.DeveloperProfileRepository
	socialAccountRepo repositories.SocialAccountRepository
	positionRepo      repositories.PositionRepository
	txManager         repositories.TxManager
	disks             *storage.Disks
}

func NewAccountService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	profileRepo repositories.DeveloperProfileRepository,
	socialAccountRepo repositories.SocialAccountRepository,
	positionRepo repositories.PositionRepository,
	txManager repositories.TxManager,
	disks *storage.Disks,
) AccountService {
	return &accountService{
		userRepo:          userRepo,
		refreshTokenRepo:  refreshTokenRepo,
		profileRepo:       profileRepo,
		socialAccountRepo: socialAccountRepo,
		positionRepo:      positionRepo,
		txManager:         txManager,
		disks:             disks,
	}
}

func (s *accountService) Me(db *gorm.DB, userID string) (*dto.UserDTO, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}
	out := dto.NewUserDTO(user)
	return &out, nil
}

func (s *accountService) RoleSelection(db *gorm.DB, userID string) (*dto.RoleSelectionInfo, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != nil {
		return nil, apperrors.ErrRoleAlreadySelected
	}
	return &dto.RoleSelectionInfo{
		Roles: models.SelectableRoles,
		User:  dto.NewUserDTO(user),
	}, nil
}

// SelectRole - однократный выбор роли после соц. входа.
// Условное обновление защищает от гонки двух вкладок.
func (s *accountService) SelectRole(db *gorm.DB, userID string, role models.UserRole) (*dto.UserDTO, error) {
	if !role.IsSelectable() {
		return nil, apperrors.FieldError("role", "Must be one of: developer, hr")
	}

	ok, err := s.userRepo.SetRoleIfEmpty(db, userID, role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		return nil, apperrors.ErrRoleAlreadySelected
	}

	return s.Me(db, userID)
}

// DeleteAccount анонимизирует и мягко удаляет пользователя.
// Подтверждение: пароль для аккаунтов с паролем, точный email для аккаунтов только с соц. входом.
// Все изменения в базе атомарны, файлы удаляются после коммита.
func (s *accountService) DeleteAccount(ctx context.Context, db *gorm.DB, userID string, req *dto.DeleteAccountRequest) error {
	user, err := s.findUser(db, userID)
	if err != nil {
		return err
	}

	if err := confirmDeletion(user, req); err != nil {
		return err
	}

	var privateFiles, publicFiles []string
	if user.DeveloperProfile != nil {
		privateFiles, publicFiles = user.DeveloperProfile.StoredFiles()
	}

	suffix := randomSuffix()
	err = s.txManager.WithinTx(db, func(tx *gorm.DB) error {
		if err := s.userRepo.Anonymize(tx, user.ID,
			fmt.Sprintf("%s %s", deletedUserName, suffix),
			fmt.Sprintf("deleted.%s@%s", suffix, deletedEmailDomain),
		); err != nil {
			return err
		}
		if err := s.refreshTokenRepo.DeleteByUserID(tx, user.ID); err != nil {
			return err
		}
		if err := s.profileRepo.DeleteByUserID(tx, user.ID); err != nil {
			return err
		}
		if err := s.socialAccountRepo.DeleteByUserID(tx, user.ID); err != nil {
			return err
		}
		if user.HasRole(models.UserRoleHR) {
			if _, err := s.positionRepo.ArchiveOpenByOwner(tx, user.ID); err != nil {
				return err
			}
		}
		return s.userRepo.SoftDelete(tx, user.ID)
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Account deleted", "user_id", user.ID)

	s.removeFiles(ctx, s.disks.Private, privateFiles)
	s.removeFiles(ctx, s.disks.Public, publicFiles)
	return nil
}

// removeFiles - ошибки хранилища только логируются, строки в базе уже удалены
func (s *accountService) removeFiles(ctx context.Context, disk storage.Storage, paths []string) {
	for _, path := range paths {
		if err := disk.Delete(ctx, path); err != nil {
			logger.CtxWithError(ctx, "Failed to delete stored file", err, "path", path)
		}
	}
}

func (s *accountService) findUser(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("account", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func confirmDeletion(user *models.User, req *dto.DeleteAccountRequest) error {
	if user.HasPassword() {
		if req.Password == "" || !auth.CheckPasswordHash(req.Password, *user.PasswordHash) {
			return apperrors.FieldError("password", "The provided password is incorrect")
		}
		return nil
	}

	if req.Email != user.Email {
		return apperrors.FieldError("email", "The provided email does not match your account")
	}
	return nil
}

// randomSuffix - 16 hex символов, уникальность обеспечивает uuid
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
