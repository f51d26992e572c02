package integration_test

import (
	"net/http"
	"strings"
	"testing"

	"jobboard_backend/internal/models"
	"jobboard_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteAccount_WrongPasswordKeepsAccount(t *testing.T) {
	ts := GetTestServer(t)
	token, user := helpers.CreateAndLoginDeveloper(t, ts)

	res, body := ts.SendRequest(t, http.MethodDelete, "/api/v1/account", token, map[string]interface{}{
		"password": "not_my_password1",
	})
	require.Equal(t, http.StatusBadRequest, res.StatusCode, body)

	var errResp errorBody
	helpers.DecodeJSON(t, body, &errResp)
	assert.Equal(t, "VALIDATION_FAILED", errResp.Error.Code)

	var stored models.User
	require.NoError(t, ts.DB.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, user.Email, stored.Email)
	assert.False(t, stored.DeletedAt.Valid)
}

func TestDeleteAccount_Anonymizes(t *testing.T) {
	ts := GetTestServer(t)
	token, user := helpers.CreateAndLoginDeveloper(t, ts)

	res, body := ts.SendRequest(t, http.MethodDelete, "/api/v1/account", token, map[string]interface{}{
		"password": helpers.TestPassword,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var stored models.User
	require.NoError(t, ts.DB.Unscoped().First(&stored, "id = ?", user.ID).Error)
	assert.True(t, stored.DeletedAt.Valid)
	assert.True(t, strings.HasPrefix(stored.Name, "Deleted User"))
	assert.Regexp(t, `^deleted\..+@deleted\.local$`, stored.Email)
	assert.Nil(t, stored.EmailVerifiedAt)
	assert.Equal(t, models.AccountStateAnonymized, stored.AccountState)

	var tokens int64
	require.NoError(t, ts.DB.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Count(&tokens).Error)
	assert.Zero(t, tokens)

	var profiles int64
	require.NoError(t, ts.DB.Model(&models.DeveloperProfile{}).Where("user_id = ?", user.ID).Count(&profiles).Error)
	assert.Zero(t, profiles)

	// старый access токен больше не работает, войти нельзя
	meRes, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/account/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, meRes.StatusCode)

	loginRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": helpers.TestPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, loginRes.StatusCode)
}

func TestDeleteAccount_HRArchivesPositions(t *testing.T) {
	ts := GetTestServer(t)
	adminToken, _ := helpers.CreateAndLoginAdmin(t, ts)
	hrToken, _ := helpers.CreateAndLoginHR(t, ts)

	draft := helpers.CreatePosition(t, ts, hrToken, uniqueTitle("Orphan Draft"))
	published := helpers.CreatePosition(t, ts, hrToken, uniqueTitle("Orphan Published"))
	helpers.PublishPosition(t, ts, adminToken, published.ID)

	res, body := ts.SendRequest(t, http.MethodDelete, "/api/v1/account", hrToken, map[string]interface{}{
		"password": helpers.TestPassword,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	for _, id := range []string{draft.ID, published.ID} {
		var stored models.Position
		require.NoError(t, ts.DB.First(&stored, "id = ?", id).Error)
		assert.Equal(t, models.PositionStatusArchived, stored.Status)
	}

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/positions/"+published.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
