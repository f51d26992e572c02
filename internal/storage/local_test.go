package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"jobboard_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(config.StorageDisk{BasePath: t.TempDir(), BaseURL: "/files/private/"}, "signing-key")
	require.NoError(t, err)
	return s
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t)

	require.NoError(t, s.Save(ctx, "cv/u1/cv.pdf", strings.NewReader("pdf"), "application/pdf"))

	exists, err := s.Exists(ctx, "cv/u1/cv.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Get(ctx, "cv/u1/cv.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))

	require.NoError(t, s.Delete(ctx, "cv/u1/cv.pdf"))
	// повторное удаление отсутствующего файла не ошибка
	require.NoError(t, s.Delete(ctx, "cv/u1/cv.pdf"))

	_, err = s.Get(ctx, "cv/u1/cv.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_PathTraversalStaysInBase(t *testing.T) {
	s := newTestLocal(t)

	full, err := s.resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full, s.BasePath()))

	_, err = s.resolve("")
	assert.Error(t, err)
}

func TestLocalStorage_SignedURL(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	signed, err := s.GetSignedURL(ctx, "cv/u1/cv.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signed, "/files/private/cv/u1/cv.pdf?"))

	parsed, err := url.Parse(signed)
	require.NoError(t, err)
	expires := parsed.Query().Get("expires")
	signature := parsed.Query().Get("signature")

	assert.True(t, s.VerifySignature("cv/u1/cv.pdf", expires, signature))
	assert.False(t, s.VerifySignature("cv/u2/cv.pdf", expires, signature))
	assert.False(t, s.VerifySignature("cv/u1/cv.pdf", expires, "deadbeef"))

	now = now.Add(16 * time.Minute)
	assert.False(t, s.VerifySignature("cv/u1/cv.pdf", expires, signature), "ссылка должна истечь")
}

func TestNewStorage_UnknownType(t *testing.T) {
	_, err := NewStorage(config.StorageDisk{Type: "ftp"}, "")
	assert.Error(t, err)
}

func TestLocalStorage_FailedWriteLeavesNoFile(t *testing.T) {
	ctx := context.Background()
	s := newTestLocal(t)

	broken := io.MultiReader(strings.NewReader("%PDF-1.4 partial"), iotest.ErrReader(errors.New("connection reset")))
	err := s.Save(ctx, "cv/u1/cv.pdf", broken, "application/pdf")
	require.Error(t, err)

	exists, err := s.Exists(ctx, "cv/u1/cv.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}
