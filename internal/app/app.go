package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"jobboard_backend/database"
	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/handlers"
	"jobboard_backend/internal/imageprocessor"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/notifications"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/routes"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/storage"
	"jobboard_backend/internal/validator"
	"jobboard_backend/internal/workers"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Repositories - репозитории без состояния, общие для сервисов, гейтов и воркера
type Repositories struct {
	Users          repositories.UserRepository
	RefreshTokens  repositories.RefreshTokenRepository
	Profiles       repositories.DeveloperProfileRepository
	SocialAccounts repositories.SocialAccountRepository
	Positions      repositories.PositionRepository
	Applications   repositories.ApplicationRepository
	Payments       repositories.PaymentRepository
	Tx             repositories.TxManager
}

func NewRepositories() *Repositories {
	return &Repositories{
		Users:          repositories.NewUserRepository(),
		RefreshTokens:  repositories.NewRefreshTokenRepository(),
		Profiles:       repositories.NewDeveloperProfileRepository(),
		SocialAccounts: repositories.NewSocialAccountRepository(),
		Positions:      repositories.NewPositionRepository(),
		Applications:   repositories.NewApplicationRepository(),
		Payments:       repositories.NewPaymentRepository(),
		Tx:             repositories.NewTxManager(),
	}
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(!cfg.IsProduction())
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	defer sqlDB.Close()
	logger.Info("Database connected")

	if cfg.Database.MigrateOnStart {
		if err := database.RunMigrations(gormDB); err != nil {
			logger.Fatal("Failed to run migrations", "error", err)
		}
	}

	repos := NewRepositories()
	if err := seedFirstAdmin(gormDB, cfg, repos.Users); err != nil {
		// без админа не запускаемся: проблема с БД
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ginRouter, serviceContainer := SetupRouter(cfg, gormDB, sqlDB, repos)

	stopWorkers := StartWorkers(ctx, cfg, gormDB, serviceContainer.PositionService, repos.RefreshTokens)
	defer stopWorkers()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
}

// SetupRouter собирает сервисы, хэндлеры и маршруты. Используется и в интеграционных тестах.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, sqlDB *sql.DB, repos *Repositories) (*gin.Engine, *services.ServiceContainer) {
	disks, err := storage.NewDisks(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized",
		"private", cfg.Storage.Private.Type,
		"public", cfg.Storage.Public.Type,
	)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	auth.InitProviders(cfg)

	serviceContainer := initializeServices(cfg, repos, tokens, disks)

	guard := middleware.NewGuard(repos.Users, tokens, middleware.Redirects{
		RoleSelection: cfg.Frontend.RoleSelectionURL,
		ProfileSetup:  cfg.Frontend.ProfileSetupURL,
		CompanySetup:  cfg.Frontend.CompanySetupURL,
	})

	appHandlers := initializeHandlers(cfg, serviceContainer, sqlDB)

	ginRouter := initializeGinRouter(cfg, gormDB)
	servePublicDisk(ginRouter, cfg, disks)

	routes.RegisterRoutes(ginRouter, appHandlers, guard)

	return ginRouter, serviceContainer
}

func initializeServices(cfg *config.Config, repos *Repositories, tokens *auth.TokenManager, disks *storage.Disks) *services.ServiceContainer {
	notifier := notifications.NewLogNotifier()
	images := imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.PhotoMaxDimension)

	positionService := services.NewPositionService(repos.Positions, notifier, cfg.ListingDuration(), cfg.WarningWindow())

	return &services.ServiceContainer{
		AuthService: services.NewAuthService(repos.Users, repos.RefreshTokens, repos.Tx, tokens, cfg.RefreshTokenTTL()),
		AccountService: services.NewAccountService(
			repos.Users, repos.RefreshTokens, repos.Profiles, repos.SocialAccounts, repos.Positions, repos.Tx, disks,
		),
		SocialAuthService: services.NewSocialAuthService(repos.Users, repos.SocialAccounts, repos.Tx),
		ProfileService: services.NewProfileService(repos.Users, repos.Profiles, disks, images, services.UploadLimits{
			CVMaxSize:         cfg.Upload.CVMaxSize,
			CVAllowedTypes:    cfg.Upload.CVAllowedTypes,
			PhotoMaxSize:      cfg.Upload.PhotoMaxSize,
			PhotoAllowedTypes: cfg.Upload.PhotoAllowedTypes,
			SignedURLTTL:      cfg.SignedURLTTL(),
		}),
		PositionService:    positionService,
		ApplicationService: services.NewApplicationService(repos.Applications, repos.Positions, disks, cfg.SignedURLTTL()),
		PaymentService: services.NewPaymentService(repos.Payments, repos.Positions, positionService, repos.Tx, services.PaymentSettings{
			WebhookSecret: cfg.Payments.WebhookSecret,
			Tiers:         cfg.Listing.Tiers,
			Providers:     cfg.Payments.Providers,
		}),
		Disks: disks,
	}
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer, sqlDB *sql.DB) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	appHandlers := &handlers.AppHandlers{
		AuthHandler: handlers.NewAuthHandler(baseHandler, svc.AuthService),
		OAuthHandler: handlers.NewOAuthHandler(baseHandler, svc.SocialAuthService, svc.AuthService, handlers.OAuthRedirects{
			LoginURL:   cfg.Frontend.LoginURL,
			SuccessURL: cfg.Frontend.OAuthSuccessURL,
		}),
		AccountHandler:     handlers.NewAccountHandler(baseHandler, svc.AccountService),
		ProfileHandler:     handlers.NewProfileHandler(baseHandler, svc.ProfileService),
		CompanyHandler:     handlers.NewCompanyHandler(baseHandler, svc.ProfileService),
		PositionHandler:    handlers.NewPositionHandler(baseHandler, svc.PositionService),
		ApplicationHandler: handlers.NewApplicationHandler(baseHandler, svc.ApplicationService),
		PaymentHandler:     handlers.NewPaymentHandler(baseHandler, svc.PaymentService),
		AdminHandler:       handlers.NewAdminHandler(baseHandler, svc.PositionService),
		HealthHandler:      handlers.NewHealthHandler(sqlDB),
	}

	// приватные файлы S3 отдаются по presigned URL напрямую из бакета
	if local, ok := svc.Disks.Private.(*storage.LocalStorage); ok {
		appHandlers.FileHandler = handlers.NewFileHandler(baseHandler, local, cfg.Storage.Private.BaseURL)
	}

	return appHandlers
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// servePublicDisk раздает фото профилей с локального публичного диска
func servePublicDisk(router *gin.Engine, cfg *config.Config, disks *storage.Disks) {
	local, ok := disks.Public.(*storage.LocalStorage)
	if !ok {
		return
	}
	prefix := cfg.Storage.Public.BaseURL
	if !strings.HasPrefix(prefix, "/") {
		// абсолютный URL: файлы раздает внешний сервер
		return
	}
	router.Static(strings.TrimSuffix(prefix, "/"), local.BasePath())
	logger.Info("Public disk served", "prefix", prefix, "path", local.BasePath())
}

// StartWorkers запускает прогон истечения вакансий: через asynq, если задан Redis,
// иначе простым тикером. Возвращает функцию остановки.
func StartWorkers(
	ctx context.Context,
	cfg *config.Config,
	db *gorm.DB,
	positionService services.PositionService,
	refreshTokenRepo repositories.RefreshTokenRepository,
) func() {
	if !cfg.Worker.Enabled {
		logger.Warn("Background worker disabled")
		return func() {}
	}

	worker := workers.NewPositionWorker(db, positionService, refreshTokenRepo,
		time.Duration(cfg.Worker.IntervalMinutes)*time.Minute)

	if cfg.Worker.RedisURL != "" {
		stop, err := workers.StartAsynq(cfg, worker)
		if err == nil {
			return stop
		}
		logger.Error("Failed to start asynq worker, falling back to ticker", "error", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	worker.Start(workerCtx)
	logger.Info("Position worker started", "interval_minutes", cfg.Worker.IntervalMinutes)
	return cancel
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config, userRepo repositories.UserRepository) error {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.FirstAdminEmail))
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	_, err := userRepo.FindByEmail(db, adminEmail)
	if err == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	role := models.UserRoleAdmin
	now := time.Now().UTC()
	admin := &models.User{
		Name:            "Administrator",
		Email:           adminEmail,
		PasswordHash:    &hashedPassword,
		EmailVerifiedAt: &now,
		Role:            &role,
		AccountState:    models.AccountStateActive,
	}
	if err := userRepo.Create(db, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("✅ Successfully created first admin user", "email", adminEmail)
	return nil
}
