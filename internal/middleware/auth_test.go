package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubUserRepo - только FindByID, остальное гейтам не нужно
type stubUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func (r *stubUserRepo) FindByID(db *gorm.DB, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

var testRedirects = Redirects{
	RoleSelection: "/select-role",
	ProfileSetup:  "/developer/profile/edit",
	CompanySetup:  "/hr/company/edit",
}

func role(r models.UserRole) *models.UserRole {
	return &r
}

func newUser(id string, r *models.UserRole) *models.User {
	u := &models.User{Name: id, Email: id + "@example.com", Role: r}
	u.ID = id
	return u
}

type gateCase struct {
	router *gin.Engine
	tokens *auth.TokenManager
}

func newGateRouter(t *testing.T, users ...*models.User) *gateCase {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	tokens := auth.NewTokenManager("gate-secret", time.Hour)
	guard := NewGuard(repo, tokens, testRedirects)

	r := gin.New()
	r.Use(DBMiddleware(nil))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)}) }

	api := r.Group("/", guard.Authenticate())
	api.GET("/any", guard.RequireRoles(), ok)
	api.GET("/hr", guard.RequireRoles(models.UserRoleHR), ok)
	api.GET("/hr-or-admin", guard.RequireRoles(models.UserRoleHR, models.UserRoleAdmin), ok)
	api.GET("/apply", guard.RequireRoles(), guard.RequireCompleteProfile(), ok)
	api.GET("/post", guard.RequireRoles(), guard.RequireCompleteCompanyProfile(), ok)

	return &gateCase{router: r, tokens: tokens}
}

func (g *gateCase) do(t *testing.T, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		token, err := g.tokens.GenerateToken(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	g := newGateRouter(t, newUser("dev", role(models.UserRoleDeveloper)))

	assert.Equal(t, http.StatusUnauthorized, g.do(t, "/any", "").Code)
	// токен валиден, но пользователя уже нет
	assert.Equal(t, http.StatusUnauthorized, g.do(t, "/any", "ghost").Code)

	w := g.do(t, "/any", "dev")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"dev"`)

	req := httptest.NewRequest(http.MethodGet, "/any", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	g := newGateRouter(t,
		newUser("dev", role(models.UserRoleDeveloper)),
		newUser("hr", role(models.UserRoleHR)),
		newUser("admin", role(models.UserRoleAdmin)),
		newUser("fresh", nil),
	)

	tests := []struct {
		name     string
		path     string
		userID   string
		wantCode int
	}{
		{"matching role", "/hr", "hr", http.StatusOK},
		{"wrong role", "/hr", "dev", http.StatusForbidden},
		{"one of several", "/hr-or-admin", "admin", http.StatusOK},
		{"any selected role", "/any", "dev", http.StatusOK},
		{"no role on restricted route", "/hr", "fresh", http.StatusFound},
		{"no role on open route", "/any", "fresh", http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := g.do(t, tt.path, tt.userID)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRequireRoles_RedirectBody(t *testing.T) {
	g := newGateRouter(t, newUser("fresh", nil))

	w := g.do(t, "/hr", "fresh")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/select-role", w.Header().Get("Location"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/select-role", body["redirect"])
	assert.Equal(t, "ROLE_SELECTION_REQUIRED", body["code"])
	assert.NotEmpty(t, body["warning"])
}

func TestCompletenessGates(t *testing.T) {
	devIncomplete := newUser("dev-empty", role(models.UserRoleDeveloper))
	devComplete := newUser("dev-full", role(models.UserRoleDeveloper))
	devComplete.DeveloperProfile = &models.DeveloperProfile{Summary: "Backend engineer"}
	hrIncomplete := newUser("hr-empty", role(models.UserRoleHR))
	hrIncomplete.CompanyName = "Acme"
	hrComplete := newUser("hr-full", role(models.UserRoleHR))
	hrComplete.CompanyName = "Acme"
	hrComplete.CompanyDescription = "We build rockets"

	g := newGateRouter(t, devIncomplete, devComplete, hrIncomplete, hrComplete)

	w := g.do(t, "/apply", "dev-empty")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testRedirects.ProfileSetup, w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), "PROFILE_INCOMPLETE")

	assert.Equal(t, http.StatusOK, g.do(t, "/apply", "dev-full").Code)
	// гейт разработчика не касается HR
	assert.Equal(t, http.StatusOK, g.do(t, "/apply", "hr-empty").Code)

	w = g.do(t, "/post", "hr-empty")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, testRedirects.CompanySetup, w.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, g.do(t, "/post", "hr-full").Code)
	assert.Equal(t, http.StatusOK, g.do(t, "/post", "dev-empty").Code)
}
