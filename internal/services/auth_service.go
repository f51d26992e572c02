package services

import (
	"errors"
	"strings"
	"time"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	// IssueTokens выдает пару токенов уже аутентифицированному пользователю (соц. вход)
	IssueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error)
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	txManager        repositories.TxManager
	tokens           *auth.TokenManager
	refreshTTL       time.Duration
	now              func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	txManager repositories.TxManager,
	tokens *auth.TokenManager,
	refreshTTL time.Duration,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		txManager:        txManager,
		tokens:           tokens,
		refreshTTL:       refreshTTL,
		now:              time.Now,
	}
}

// Register - регистрация по email и паролю
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.FieldError("password", err.Error())
	}
	if req.Role != "" && !req.Role.IsSelectable() {
		return nil, apperrors.FieldError("role", "Must be one of: developer, hr")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: &hash,
		AccountState: models.AccountStateActive,
	}
	if req.Role != "" {
		role := req.Role
		user.Role = &role
	}

	var response *dto.AuthResponse
	err = s.txManager.WithinTx(db, func(tx *gorm.DB) error {
		if err := s.userRepo.Create(tx, user); err != nil {
			if errors.Is(err, repositories.ErrUserAlreadyExists) {
				return apperrors.ErrEmailAlreadyExists
			}
			return apperrors.InternalError(err)
		}

		var err error
		response, err = s.IssueTokens(tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Login - аутентификация по паролю.
// Аккаунты без пароля (только соц. вход) получают ту же ошибку, что и неверный пароль.
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !user.HasPassword() || !auth.CheckPasswordHash(req.Password, *user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.IssueTokens(db, user)
}

// RefreshToken - новый access token с ротацией refresh token
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	hash := auth.HashRefreshToken(refreshToken)

	var response *dto.AuthResponse
	err := s.txManager.WithinTx(db, func(tx *gorm.DB) error {
		token, err := s.refreshTokenRepo.FindByHash(tx, hash)
		if err != nil {
			if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
				return apperrors.ErrInvalidToken
			}
			return apperrors.InternalError(err)
		}

		if err := s.refreshTokenRepo.DeleteByHash(tx, hash); err != nil {
			// токен уже забрал параллельный запрос
			if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
				return apperrors.ErrInvalidToken
			}
			return apperrors.InternalError(err)
		}

		if s.now().After(token.ExpiresAt) {
			return apperrors.ErrInvalidToken
		}

		user, err := s.userRepo.FindByID(tx, token.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return apperrors.ErrInvalidToken
			}
			return apperrors.InternalError(err)
		}

		response, err = s.IssueTokens(tx, user)
		return err
	})
	if err != nil {
		// удаление просроченного токена должно сохраниться
		if errors.Is(err, apperrors.ErrInvalidToken) {
			_ = s.refreshTokenRepo.DeleteByHash(db, hash)
		}
		return nil, err
	}
	return response, nil
}

// Logout отзывает refresh token. Неизвестный токен не ошибка.
func (s *AuthServiceImpl) Logout(db *gorm.DB, refreshToken string) error {
	err := s.refreshTokenRepo.DeleteByHash(db, auth.HashRefreshToken(refreshToken))
	if err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) IssueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	plain, hash, err := auth.NewRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.now()
	if err := s.refreshTokenRepo.Create(db, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.refreshTTL),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: plain,
		ExpiresAt:    now.Add(s.tokens.TTL()),
		User:         dto.NewUserDTO(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
