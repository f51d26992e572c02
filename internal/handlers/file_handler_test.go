package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobboard_backend/internal/config"
	"jobboard_backend/internal/storage"
	"jobboard_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileRouter(t *testing.T) (*gin.Engine, *storage.LocalStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	private, err := storage.NewLocalStorage(config.StorageDisk{BasePath: t.TempDir(), BaseURL: "/files/private"}, "signing-key")
	require.NoError(t, err)

	h := NewFileHandler(NewBaseHandler(validator.New()), private, "/files/private/")
	router := gin.New()
	h.RegisterRoutes(router.Group(""))
	return router, private
}

func TestFileHandler_ServePrivate(t *testing.T) {
	router, private := newFileRouter(t)
	ctx := context.Background()

	pdf := "%PDF-1.4\n%test document\n"
	require.NoError(t, private.Save(ctx, "cv/u1/cv.pdf", strings.NewReader(pdf), "application/pdf"))

	signed, err := private.GetSignedURL(ctx, "cv/u1/cv.pdf", time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, signed, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pdf, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, signed+"&download=true", nil))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="cv.pdf"`)
}

func TestFileHandler_RejectsBadLinks(t *testing.T) {
	router, private := newFileRouter(t)
	ctx := context.Background()
	require.NoError(t, private.Save(ctx, "cv/u1/cv.pdf", strings.NewReader("%PDF-1.4"), "application/pdf"))

	signed, err := private.GetSignedURL(ctx, "cv/u1/cv.pdf", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name string
		url  string
		code int
	}{
		{"no signature", "/files/private/cv/u1/cv.pdf", http.StatusForbidden},
		{"other file", strings.Replace(signed, "cv.pdf", "other.pdf", 1), http.StatusForbidden},
		{"tampered signature", signed[:len(signed)-4] + "0000", http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.url, nil))
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestFileHandler_ExpiredLink(t *testing.T) {
	router, private := newFileRouter(t)
	ctx := context.Background()
	require.NoError(t, private.Save(ctx, "cv/u1/cv.pdf", strings.NewReader("%PDF-1.4"), "application/pdf"))

	signed, err := private.GetSignedURL(ctx, "cv/u1/cv.pdf", -time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, signed, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFileHandler_MissingFile(t *testing.T) {
	router, private := newFileRouter(t)

	signed, err := private.GetSignedURL(context.Background(), "cv/u1/gone.pdf", time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, signed, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"domain":"file"`)
}
