package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"jobboard_backend/internal/app"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/services"

	"gorm.io/gorm"
)

const (
	TestJWTSecret     = "test_jwt_secret_for_integration_12345"
	TestWebhookSecret = "test_webhook_secret"
	TestProvider      = "testpay"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *gorm.DB
	Config   *config.Config
	Services *services.ServiceContainer

	container  *PGContainer
	storageDir string
}

// NewTestServer поднимает базу, применяет миграции и собирает роутер приложения
func NewTestServer(ctx context.Context) (*TestServer, error) {
	logger.Init("test")

	container, dsn, err := StartPostgres(ctx)
	if err != nil {
		return nil, err
	}

	db, err := ConnectAndMigrate(ctx, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	storageDir, err := os.MkdirTemp("", "jobboard-test-storage-")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	cfg := TestConfig(dsn, storageDir)

	sqlDB, err := db.DB()
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	router, svc := app.SetupRouter(cfg, db, sqlDB, app.NewRepositories())
	server := httptest.NewServer(router)
	// редиректы гейтов проверяем сами, клиент не должен по ним ходить
	server.Client().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	log.Printf("✅ Test server started, database ready")

	return &TestServer{
		Server:     server,
		DB:         db,
		Config:     cfg,
		Services:   svc,
		container:  container,
		storageDir: storageDir,
	}, nil
}

// TestConfig - значения по умолчанию плюс секреты и каталоги для тестов
func TestConfig(dsn, storageDir string) *config.Config {
	cfg := config.Defaults()
	cfg.Server.Env = "test"
	cfg.Database.DSN = dsn
	cfg.JWT.Secret = TestJWTSecret
	cfg.Session.Secret = TestJWTSecret
	cfg.Payments.WebhookSecret = TestWebhookSecret
	cfg.Payments.Providers = map[string]config.PaymentProvider{
		TestProvider: {CheckoutURL: "https://pay.example.com/checkout"},
	}
	cfg.Storage.Private.BasePath = filepath.Join(storageDir, "private")
	cfg.Storage.Public.BasePath = filepath.Join(storageDir, "public")
	cfg.Worker.Enabled = false
	return cfg
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	if sqlDB, err := ts.DB.DB(); err == nil {
		sqlDB.Close()
	}
	_ = ts.container.Terminate(context.Background())
	_ = os.RemoveAll(ts.storageDir)
}

// SendRequest отправляет JSON запрос и возвращает ответ с телом строкой
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}
	return ts.SendRaw(t, method, path, reqBody, headers)
}

// SendRaw - запрос с произвольным телом и заголовками (вебхуки, multipart)
func (ts *TestServer) SendRaw(t *testing.T, method, path string, body io.Reader, headers map[string]string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, ts.Server.URL+path, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("failed to send request: %v", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return res, string(resBody)
}

// DecodeJSON разбирает тело ответа в out
func DecodeJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(body), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", body, err)
	}
}
