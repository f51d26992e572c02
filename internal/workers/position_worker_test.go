package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

type stubPositionService struct {
	services.PositionService
	calls  []time.Time
	result *services.SweepResult
	err    error
}

func (s *stubPositionService) ExpirePositions(ctx context.Context, db *gorm.DB, now time.Time) (*services.SweepResult, error) {
	s.calls = append(s.calls, now)
	return s.result, s.err
}

type stubRefreshTokenRepo struct {
	repositories.RefreshTokenRepository
	cleanedAt []time.Time
	err       error
}

func (r *stubRefreshTokenRepo) CleanExpired(db *gorm.DB, now time.Time) (int64, error) {
	r.cleanedAt = append(r.cleanedAt, now)
	return 3, r.err
}

func newTestWorker(t *testing.T, svc services.PositionService, tokens repositories.RefreshTokenRepository) *PositionWorker {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{})
	require.NoError(t, err)

	w := NewPositionWorker(db, svc, tokens, 0)
	w.now = func() time.Time { return time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC) }
	return w
}

func TestPositionWorker_RunOnce(t *testing.T) {
	svc := &stubPositionService{result: &services.SweepResult{Expired: 2, Warned: 1}}
	tokens := &stubRefreshTokenRepo{}
	w := newTestWorker(t, svc, tokens)

	result, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, 1, result.Warned)

	require.Len(t, svc.calls, 1)
	require.Len(t, tokens.cleanedAt, 1)
	assert.Equal(t, svc.calls[0], tokens.cleanedAt[0], "sweep and cleanup share one clock reading")
}

func TestPositionWorker_RunOnce_SweepError(t *testing.T) {
	svc := &stubPositionService{err: errors.New("db down")}
	tokens := &stubRefreshTokenRepo{}
	w := newTestWorker(t, svc, tokens)

	_, err := w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, tokens.cleanedAt)
}

func TestPositionWorker_TokenCleanupErrorIsIgnored(t *testing.T) {
	svc := &stubPositionService{result: &services.SweepResult{}}
	tokens := &stubRefreshTokenRepo{err: errors.New("locked")}
	w := newTestWorker(t, svc, tokens)

	_, err := w.RunOnce(context.Background())
	assert.NoError(t, err)
}

func TestNewPositionWorker_DefaultInterval(t *testing.T) {
	w := NewPositionWorker(nil, nil, nil, 0)
	assert.Equal(t, time.Hour, w.interval)
}

func TestHandleExpirePositions(t *testing.T) {
	svc := &stubPositionService{err: errors.New("boom")}
	w := newTestWorker(t, svc, nil)

	err := HandleExpirePositions(w)(context.Background(), NewExpireTask())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expire positions")

	svc.err = nil
	svc.result = &services.SweepResult{}
	assert.NoError(t, HandleExpirePositions(w)(context.Background(), NewExpireTask()))
	assert.Equal(t, TaskExpirePositions, NewExpireTask().Type())
}
