package integration_test

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"jobboard_backend/test/helpers"
)

var (
	globalTestServer *helpers.TestServer
	setupErr         error
)

// TestMain поднимает одну базу и один сервер на весь пакет.
// Без Docker и TEST_DATABASE_URL тесты пропускаются.
func TestMain(m *testing.M) {
	flag.Parse()

	if !testing.Short() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		log.Println("--- [TestMain] Initializing test server... ---")
		globalTestServer, setupErr = helpers.NewTestServer(ctx)
		cancel()
		if setupErr != nil {
			log.Printf("--- [TestMain] Integration environment unavailable: %v ---", setupErr)
		}
	}

	code := m.Run()

	if globalTestServer != nil {
		log.Println("--- [TestMain] Cleaning up... ---")
		globalTestServer.Close()
	}
	os.Exit(code)
}

// GetTestServer возвращает общий сервер или пропускает тест
func GetTestServer(t *testing.T) *helpers.TestServer {
	t.Helper()
	if testing.Short() {
		t.Skip("integration tests are skipped in -short mode")
	}
	if setupErr != nil || globalTestServer == nil {
		t.Skipf("integration environment unavailable: %v", setupErr)
	}
	return globalTestServer
}

// errorBody - формат ошибок API
type errorBody struct {
	Error struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

// redirectBody - ответ гейтов с 302
type redirectBody struct {
	Code     string `json:"code"`
	Redirect string `json:"redirect"`
	Warning  string `json:"warning"`
}
