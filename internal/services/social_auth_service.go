package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// SocialIdentity - то, что вернул OAuth-провайдер
type SocialIdentity struct {
	Provider   models.OAuthProvider
	ProviderID string
	Email      string
	Name       string
}

type SocialAuthService interface {
	// ResolveUser находит или создает пользователя для внешней учетной записи
	ResolveUser(ctx context.Context, db *gorm.DB, identity SocialIdentity) (*dto.SocialLoginResult, error)
}

type socialAuthService struct {
	userRepo          repositories.UserRepository
	socialAccountRepo repositories.SocialAccountRepository
	txManager         repositories.TxManager
	now               func() time.Time
}

func NewSocialAuthService(
	userRepo repositories.UserRepository,
	socialAccountRepo repositories.SocialAccountRepository,
	txManager repositories.TxManager,
) SocialAuthService {
	return &socialAuthService{
		userRepo:          userRepo,
		socialAccountRepo: socialAccountRepo,
		txManager:         txManager,
		now:               time.Now,
	}
}

// ResolveUser: привязанная учетная запись -> ее пользователь;
// иначе пользователь с тем же email -> привязка; иначе новый пользователь без роли и пароля.
// Удаленные пользователи не находятся: их соц. аккаунты удалены, а строки скрыты soft delete.
func (s *socialAuthService) ResolveUser(ctx context.Context, db *gorm.DB, identity SocialIdentity) (*dto.SocialLoginResult, error) {
	if !identity.Provider.IsSupported() {
		return nil, apperrors.ErrProviderNotFound
	}
	if identity.ProviderID == "" {
		return nil, apperrors.ErrInvalidOperation("oauth", "Provider did not return an account id")
	}

	account, err := s.socialAccountRepo.FindByProvider(db, identity.Provider, identity.ProviderID)
	switch {
	case err == nil:
		user, err := s.userRepo.FindByID(db, account.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, apperrors.ErrAccountDeleted
			}
			return nil, apperrors.InternalError(err)
		}
		return &dto.SocialLoginResult{User: user}, nil
	case !errors.Is(err, repositories.ErrSocialAccountNotFound):
		return nil, apperrors.InternalError(err)
	}

	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, apperrors.ErrSocialEmailMissing
	}

	result := &dto.SocialLoginResult{}
	err = s.txManager.WithinTx(db, func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByEmail(tx, email)
		switch {
		case err == nil:
			result.Linked = true
		case errors.Is(err, repositories.ErrUserNotFound):
			now := s.now()
			user = &models.User{
				Name:            socialDisplayName(identity),
				Email:           email,
				EmailVerifiedAt: &now,
				AccountState:    models.AccountStateActive,
			}
			if err := s.userRepo.Create(tx, user); err != nil {
				return err
			}
			result.Created = true
		default:
			return err
		}

		if err := s.socialAccountRepo.Create(tx, &models.SocialAccount{
			UserID:     user.ID,
			Provider:   identity.Provider,
			ProviderID: identity.ProviderID,
			Email:      email,
		}); err != nil {
			return err
		}

		// провайдер подтвердил владение адресом
		if result.Linked && user.EmailVerifiedAt == nil {
			if err := s.userRepo.MarkEmailVerified(tx, user.ID, s.now()); err != nil {
				return err
			}
		}

		result.User = user
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSocialAccountExists) || errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrConflict(err, "oauth", "Account is being linked by another request, try again")
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Social login resolved",
		"provider", identity.Provider,
		"user_id", result.User.ID,
		"created", result.Created,
		"linked", result.Linked,
	)
	return result, nil
}

func socialDisplayName(identity SocialIdentity) string {
	if name := strings.TrimSpace(identity.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(strings.TrimSpace(identity.Email), "@")
	return local
}
