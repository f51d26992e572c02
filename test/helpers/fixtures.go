package helpers

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services/dto"

	"github.com/stretchr/testify/require"
)

const TestPassword = "password123"

var emailSeq atomic.Int64

// UniqueEmail - тесты делят одну базу, поэтому email всегда уникальный
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d_%d@test.com", prefix, time.Now().UnixNano(), emailSeq.Add(1))
}

// CreateUser создает подтвержденного пользователя с паролем TestPassword.
// role nil - пользователь еще не выбрал роль.
func CreateUser(t *testing.T, ts *TestServer, name string, role *models.UserRole) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &models.User{
		Name:            name,
		Email:           UniqueEmail("user"),
		PasswordHash:    &hash,
		EmailVerifiedAt: &now,
		Role:            role,
		AccountState:    models.AccountStateActive,
	}
	require.NoError(t, ts.DB.Create(user).Error)
	return user
}

// Login возвращает access и refresh токены
func Login(t *testing.T, ts *TestServer, email, password string) dto.AuthResponse {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "login failed: %s", body)

	var out dto.AuthResponse
	DecodeJSON(t, body, &out)
	require.NotEmpty(t, out.AccessToken)
	return out
}

// CreateAndLoginUser создает пользователя и логинит его
func CreateAndLoginUser(t *testing.T, ts *TestServer, name string, role *models.UserRole) (string, *models.User) {
	t.Helper()
	user := CreateUser(t, ts, name, role)
	return Login(t, ts, user.Email, TestPassword).AccessToken, user
}

// CreateAndLoginDeveloper - разработчик с заполненным профилем
func CreateAndLoginDeveloper(t *testing.T, ts *TestServer) (string, *models.User) {
	t.Helper()
	role := models.UserRoleDeveloper
	token, user := CreateAndLoginUser(t, ts, "Test Developer", &role)

	profile := &models.DeveloperProfile{
		UserID:   user.ID,
		Headline: "Backend engineer",
		Summary:  "Go, Postgres and distributed systems",
		Skills:   []string{"go", "postgres"},
	}
	require.NoError(t, ts.DB.Create(profile).Error)
	return token, user
}

// CreateAndLoginHR - HR с заполненными данными компании
func CreateAndLoginHR(t *testing.T, ts *TestServer) (string, *models.User) {
	t.Helper()
	role := models.UserRoleHR
	token, user := CreateAndLoginUser(t, ts, "Test HR", &role)

	require.NoError(t, ts.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"company_name":        "Acme Inc.",
		"company_description": "We build rockets",
	}).Error)
	return token, user
}

func CreateAndLoginAdmin(t *testing.T, ts *TestServer) (string, *models.User) {
	t.Helper()
	role := models.UserRoleAdmin
	return CreateAndLoginUser(t, ts, "Test Admin", &role)
}

// CreatePosition создает черновик через API от имени HR
func CreatePosition(t *testing.T, ts *TestServer, hrToken, title string) dto.PositionResponse {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/hr/positions", hrToken, map[string]interface{}{
		"title":       title,
		"description": "Long enough description of the job",
		"location":    "Remote",
		"remote":      true,
		"tech_stack":  []string{"go"},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, "create position failed: %s", body)

	var out dto.PositionResponse
	DecodeJSON(t, body, &out)
	return out
}

// PublishPosition публикует вакансию через админский эндпоинт
func PublishPosition(t *testing.T, ts *TestServer, adminToken, positionID string) dto.PositionResponse {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/positions/"+positionID+"/publish", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, "publish failed: %s", body)

	var out dto.PositionResponse
	DecodeJSON(t, body, &out)
	return out
}
