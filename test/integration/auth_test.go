package integration_test

import (
	"net/http"
	"testing"

	"jobboard_backend/internal/services/dto"
	"jobboard_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	ts := GetTestServer(t)
	email := helpers.UniqueEmail("dev")

	regRes, regBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name":     "Test Developer",
		"email":    email,
		"password": "super_password123",
		"role":     "developer",
	})
	require.Equal(t, http.StatusCreated, regRes.StatusCode, regBody)

	var registered dto.AuthResponse
	helpers.DecodeJSON(t, regBody, &registered)
	assert.NotEmpty(t, registered.AccessToken)
	require.NotNil(t, registered.User.Role)
	assert.Equal(t, "developer", *registered.User.Role)
	assert.False(t, registered.User.NeedsRoleSelection)

	login := helpers.Login(t, ts, email, "super_password123")

	meRes, meBody := ts.SendRequest(t, http.MethodGet, "/api/v1/account/me", login.AccessToken, nil)
	assert.Equal(t, http.StatusOK, meRes.StatusCode)
	assert.Contains(t, meBody, email)

	// refresh токен одноразовый
	refreshRes, refreshBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, refreshRes.StatusCode, refreshBody)

	var refreshed dto.AuthResponse
	helpers.DecodeJSON(t, refreshBody, &refreshed)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	replayRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": login.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, replayRes.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := GetTestServer(t)
	user := helpers.CreateUser(t, ts, "Someone", nil)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "wrong_password1",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	var errResp errorBody
	helpers.DecodeJSON(t, body, &errResp)
	assert.Equal(t, "INVALID_CREDENTIALS", errResp.Error.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := GetTestServer(t)
	user := helpers.CreateUser(t, ts, "Existing", nil)

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name":     "Copycat",
		"email":    user.Email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	ts := GetTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name":     "Sneaky",
		"email":    helpers.UniqueEmail("sneaky"),
		"password": "password123",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestProtectedRoute_WithoutToken(t *testing.T) {
	ts := GetTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/account/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/account/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := GetTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"database":"up"`)
}
