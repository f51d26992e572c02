package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// StorageDisk - настройки одного логического хранилища (private для CV, public для фото)
type StorageDisk struct {
	Type       string `yaml:"type"`      // local, s3
	BasePath   string `yaml:"base_path"` // для local
	BaseURL    string `yaml:"base_url"`  // публичный префикс URL
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"` // R2, MinIO и прочие S3-совместимые
	PublicRead bool   `yaml:"public_read"`
}

// OAuthProvider - ключи одного OAuth-провайдера
type OAuthProvider struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	CallbackURL  string `yaml:"callback_url"`
}

// Enabled - провайдер регистрируется в goth только при наличии ключей
func (p OAuthProvider) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// TierPrice - цена размещения для тарифа, сумма в минимальных единицах валюты
type TierPrice struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// PaymentProvider - внешний провайдер оплаты, известен только URL checkout-страницы
type PaymentProvider struct {
	CheckoutURL string `yaml:"checkout_url"`
}

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN            string `yaml:"url"`
		MigrateOnStart bool   `yaml:"migrate_on_start"`
	} `yaml:"database"`

	JWT struct {
		Secret          string `yaml:"secret"`
		TTL             int    `yaml:"ttl"`               // минуты
		RefreshTTLHours int    `yaml:"refresh_ttl_hours"` // часы
	} `yaml:"jwt"`

	Session struct {
		Secret string `yaml:"secret"`
	} `yaml:"session"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	// Адреса фронтенда, на которые уходят редиректы гейтов и OAuth
	Frontend struct {
		LoginURL         string `yaml:"login_url"`
		OAuthSuccessURL  string `yaml:"oauth_success_url"`
		RoleSelectionURL string `yaml:"role_selection_url"`
		ProfileSetupURL  string `yaml:"profile_setup_url"`
		CompanySetupURL  string `yaml:"company_setup_url"`
	} `yaml:"frontend"`

	OAuth struct {
		GitHub   OAuthProvider `yaml:"github"`
		Google   OAuthProvider `yaml:"google"`
		LinkedIn OAuthProvider `yaml:"linkedin"`
	} `yaml:"oauth"`

	Storage struct {
		Private StorageDisk `yaml:"private"`
		Public  StorageDisk `yaml:"public"`
	} `yaml:"storage"`

	Upload struct {
		CVMaxSize           int64    `yaml:"cv_max_size"`
		CVAllowedTypes      []string `yaml:"cv_allowed_types"`
		PhotoMaxSize        int64    `yaml:"photo_max_size"`
		PhotoAllowedTypes   []string `yaml:"photo_allowed_types"`
		PhotoMaxDimension   int      `yaml:"photo_max_dimension"`
		ImageQuality        int      `yaml:"image_quality"`
		SignedURLTTLMinutes int      `yaml:"signed_url_ttl_minutes"`
	} `yaml:"upload"`

	Listing struct {
		DurationDays int                  `yaml:"duration_days"`
		WarningDays  int                  `yaml:"warning_days"`
		Tiers        map[string]TierPrice `yaml:"tiers"`
	} `yaml:"listing"`

	Payments struct {
		WebhookSecret string                     `yaml:"webhook_secret"`
		Providers     map[string]PaymentProvider `yaml:"providers"`
	} `yaml:"payments"`

	Worker struct {
		Enabled         bool   `yaml:"enabled"`
		RedisURL        string `yaml:"redis_url"`
		Schedule        string `yaml:"schedule"` // cron
		Timezone        string `yaml:"timezone"`
		IntervalMinutes int    `yaml:"interval_minutes"` // тикер, если Redis не настроен
	} `yaml:"worker"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

var AppConfig *Config

// LoadConfig загружает конфигурацию и падает при ошибке.
// Порядок: значения по умолчанию -> config.yaml (CONFIG_PATH) -> .env/переменные окружения.
func LoadConfig() {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// Load собирает конфиг. Отсутствующий файл не ошибка: в тестах и контейнерах
// всё приходит из окружения.
func Load(configPath string) (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	cfg := Defaults()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	f, err := os.Open(configPath)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found, using defaults and environment", configPath)
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", configPath, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults - конфигурация, достаточная для локального запуска
func Defaults() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"

	cfg.JWT.TTL = 60
	cfg.JWT.RefreshTTLHours = 7 * 24

	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}

	cfg.Frontend.LoginURL = "/login"
	cfg.Frontend.OAuthSuccessURL = "/auth/callback"
	cfg.Frontend.RoleSelectionURL = "/api/v1/account/role"
	cfg.Frontend.ProfileSetupURL = "/developer/profile/edit"
	cfg.Frontend.CompanySetupURL = "/hr/company/edit"

	cfg.Storage.Private = StorageDisk{Type: "local", BasePath: "./storage/private", BaseURL: "/files/private"}
	cfg.Storage.Public = StorageDisk{Type: "local", BasePath: "./storage/public", BaseURL: "/files/public"}

	cfg.Upload.CVMaxSize = 5 * 1024 * 1024
	cfg.Upload.CVAllowedTypes = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	cfg.Upload.PhotoMaxSize = 2 * 1024 * 1024
	cfg.Upload.PhotoAllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	cfg.Upload.PhotoMaxDimension = 512
	cfg.Upload.ImageQuality = 85
	cfg.Upload.SignedURLTTLMinutes = 15

	cfg.Listing.DurationDays = 30
	cfg.Listing.WarningDays = 3
	cfg.Listing.Tiers = map[string]TierPrice{
		"regular":  {Amount: 4900, Currency: "USD"},
		"featured": {Amount: 9900, Currency: "USD"},
		"top":      {Amount: 19900, Currency: "USD"},
	}

	cfg.Worker.Enabled = true
	cfg.Worker.Schedule = "0 3 * * *"
	cfg.Worker.Timezone = "UTC"
	cfg.Worker.IntervalMinutes = 60

	return &cfg
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("DATABASE_URL", &cfg.Database.DSN)
	setString("SERVER_ENV", &cfg.Server.Env)
	setString("JWT_SECRET", &cfg.JWT.Secret)
	setString("SESSION_SECRET", &cfg.Session.Secret)
	setString("REDIS_URL", &cfg.Worker.RedisURL)
	setString("PAYMENT_WEBHOOK_SECRET", &cfg.Payments.WebhookSecret)
	setString("FIRST_ADMIN_EMAIL", &cfg.FirstAdminEmail)
	setString("FIRST_ADMIN_PASSWORD", &cfg.FirstAdminPassword)

	setString("GITHUB_CLIENT_ID", &cfg.OAuth.GitHub.ClientID)
	setString("GITHUB_CLIENT_SECRET", &cfg.OAuth.GitHub.ClientSecret)
	setString("GOOGLE_CLIENT_ID", &cfg.OAuth.Google.ClientID)
	setString("GOOGLE_CLIENT_SECRET", &cfg.OAuth.Google.ClientSecret)
	setString("LINKEDIN_CLIENT_ID", &cfg.OAuth.LinkedIn.ClientID)
	setString("LINKEDIN_CLIENT_SECRET", &cfg.OAuth.LinkedIn.ClientSecret)

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

// Validate проверяет значения, без которых бизнес-логика не работает
func (c *Config) Validate() error {
	if c.Listing.DurationDays <= 0 {
		return fmt.Errorf("listing.duration_days must be positive, got %d", c.Listing.DurationDays)
	}
	if c.Listing.WarningDays < 0 {
		return fmt.Errorf("listing.warning_days must not be negative, got %d", c.Listing.WarningDays)
	}
	for name, price := range c.Listing.Tiers {
		switch name {
		case "regular", "featured", "top":
		default:
			return fmt.Errorf("listing.tiers: unknown tier %q", name)
		}
		if price.Amount < 0 || price.Currency == "" {
			return fmt.Errorf("listing.tiers.%s: amount and currency are required", name)
		}
	}
	return nil
}

func (c *Config) ListingDuration() time.Duration {
	return time.Duration(c.Listing.DurationDays) * 24 * time.Hour
}

func (c *Config) WarningWindow() time.Duration {
	return time.Duration(c.Listing.WarningDays) * 24 * time.Hour
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLHours) * time.Hour
}

func (c *Config) SignedURLTTL() time.Duration {
	return time.Duration(c.Upload.SignedURLTTLMinutes) * time.Minute
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
