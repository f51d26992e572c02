package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory реализации репозиториев. *gorm.DB в них не используется,
// поэтому тесты передают nil.

type passThroughTx struct{}

func (passThroughTx) WithinTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return fn(db)
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(db *gorm.DB, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if !u.DeletedAt.Valid && strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDUnscoped(db *gorm.DB, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(db *gorm.DB, user *models.User) error {
	if _, err := r.FindByEmail(db, user.Email); err == nil {
		return repositories.ErrUserAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SetRoleIfEmpty(db *gorm.DB, userID string, role models.UserRole) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.Role != nil {
		return false, nil
	}
	u.Role = &role
	return true, nil
}

func (r *fakeUserRepo) UpdateCompany(db *gorm.DB, userID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.CompanyName = fields["company_name"].(string)
	u.CompanyWebsite = fields["company_website"].(string)
	u.CompanyDescription = fields["company_description"].(string)
	u.CompanyLocation = fields["company_location"].(string)
	return nil
}

func (r *fakeUserRepo) MarkEmailVerified(db *gorm.DB, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok && u.EmailVerifiedAt == nil {
		u.EmailVerifiedAt = &at
	}
	return nil
}

func (r *fakeUserRepo) Anonymize(db *gorm.DB, userID, name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Name = name
	u.Email = email
	u.PasswordHash = nil
	u.EmailVerifiedAt = nil
	u.AccountState = models.AccountStateAnonymized
	u.CompanyName, u.CompanyWebsite, u.CompanyDescription, u.CompanyLocation = "", "", "", ""
	return nil
}

func (r *fakeUserRepo) SoftDelete(db *gorm.DB, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

// --- refresh tokens ---

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: map[string]*models.RefreshToken{}}
}

func (r *fakeRefreshTokenRepo) Create(db *gorm.DB, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeRefreshTokenRepo) FindByHash(db *gorm.DB, hash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok {
		return nil, repositories.ErrRefreshTokenNotFound
	}
	return t, nil
}

func (r *fakeRefreshTokenRepo) DeleteByHash(db *gorm.DB, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[hash]; !ok {
		return repositories.ErrRefreshTokenNotFound
	}
	delete(r.tokens, hash)
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByUserID(db *gorm.DB, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) CleanExpired(db *gorm.DB, now time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeRefreshTokenRepo) countFor(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

// --- developer profiles ---

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.DeveloperProfile
}

func newFakeProfileRepo(profiles ...*models.DeveloperProfile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: map[string]*models.DeveloperProfile{}}
	for _, p := range profiles {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *fakeProfileRepo) FindByUserID(db *gorm.DB, userID string) (*models.DeveloperProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Upsert(db *gorm.DB, profile *models.DeveloperProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[profile.UserID]; ok {
		existing.Headline = profile.Headline
		existing.Summary = profile.Summary
		existing.Location = profile.Location
		existing.Skills = profile.Skills
		existing.Links = profile.Links
		return nil
	}
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) UpdateFiles(db *gorm.DB, userID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	for k, v := range fields {
		var path *string
		if s, ok := v.(string); ok {
			path = &s
		}
		switch k {
		case "cv_path":
			p.CVPath = path
		case "photo_path":
			p.PhotoPath = path
		}
	}
	return nil
}

func (r *fakeProfileRepo) DeleteByUserID(db *gorm.DB, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	return nil
}

// --- social accounts ---

type fakeSocialRepo struct {
	mu       sync.Mutex
	accounts []*models.SocialAccount
}

func (r *fakeSocialRepo) FindByProvider(db *gorm.DB, provider models.OAuthProvider, providerID string) (*models.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Provider == provider && a.ProviderID == providerID {
			return a, nil
		}
	}
	return nil, repositories.ErrSocialAccountNotFound
}

func (r *fakeSocialRepo) ListByUserID(db *gorm.DB, userID string) ([]models.SocialAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SocialAccount
	for _, a := range r.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeSocialRepo) Create(db *gorm.DB, account *models.SocialAccount) error {
	if _, err := r.FindByProvider(db, account.Provider, account.ProviderID); err == nil {
		return repositories.ErrSocialAccountExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	account.ID = uuid.NewString()
	r.accounts = append(r.accounts, account)
	return nil
}

func (r *fakeSocialRepo) DeleteByUserID(db *gorm.DB, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.accounts[:0]
	for _, a := range r.accounts {
		if a.UserID != userID {
			kept = append(kept, a)
		}
	}
	r.accounts = kept
	return nil
}

// --- positions ---

type fakePositionRepo struct {
	mu        sync.Mutex
	positions map[string]*models.Position
	// failExpire - id вакансий, на которых ExpireIfDue возвращает ошибку
	failExpire map[string]bool
	// beforeExpire вызывается перед CAS, чтобы смоделировать гонку
	beforeExpire func(id string)
}

func newFakePositionRepo(positions ...*models.Position) *fakePositionRepo {
	r := &fakePositionRepo{positions: map[string]*models.Position{}, failExpire: map[string]bool{}}
	for _, p := range positions {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		r.positions[p.ID] = p
	}
	return r
}

func (r *fakePositionRepo) get(id string) *models.Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.positions[id]
}

func (r *fakePositionRepo) Create(db *gorm.DB, position *models.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.positions {
		if p.Slug == position.Slug {
			return repositories.ErrSlugTaken
		}
	}
	if position.ID == "" {
		position.ID = uuid.NewString()
	}
	r.positions[position.ID] = position
	return nil
}

func (r *fakePositionRepo) FindByID(db *gorm.DB, id string) (*models.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.positions[id]
	if !ok {
		return nil, repositories.ErrPositionNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePositionRepo) FindBySlug(db *gorm.DB, slug string) (*models.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.positions {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPositionNotFound
}

func (r *fakePositionRepo) SlugExists(db *gorm.DB, slug string) (bool, error) {
	_, err := r.FindBySlug(db, slug)
	return err == nil, nil
}

func (r *fakePositionRepo) Update(db *gorm.DB, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.positions[id]
	if !ok {
		return repositories.ErrPositionNotFound
	}
	applyPositionFields(p, fields)
	return nil
}

func (r *fakePositionRepo) Delete(db *gorm.DB, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.positions[id]; !ok {
		return repositories.ErrPositionNotFound
	}
	delete(r.positions, id)
	return nil
}

func (r *fakePositionRepo) Transition(db *gorm.DB, id string, from []models.PositionStatus, to models.PositionStatus, extra map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.positions[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if p.Status == s {
			p.Status = to
			applyPositionFields(p, extra)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePositionRepo) ExpireIfDue(db *gorm.DB, id string, now time.Time) (bool, error) {
	if r.beforeExpire != nil {
		r.beforeExpire(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failExpire[id] {
		return false, errors.New("connection reset")
	}
	p, ok := r.positions[id]
	if !ok || p.Status != models.PositionStatusPublished || !p.IsDue(now) {
		return false, nil
	}
	p.Status = models.PositionStatusExpired
	return true, nil
}

func (r *fakePositionRepo) FindDueForExpiry(db *gorm.DB, now time.Time) ([]models.Position, error) {
	return r.filter(func(p *models.Position) bool {
		return p.Status == models.PositionStatusPublished && p.IsDue(now)
	}), nil
}

func (r *fakePositionRepo) FindExpiringBetween(db *gorm.DB, from, to time.Time) ([]models.Position, error) {
	return r.filter(func(p *models.Position) bool {
		return p.Status == models.PositionStatusPublished && p.ExpiresAt != nil &&
			p.ExpiresAt.After(from) && !p.ExpiresAt.After(to)
	}), nil
}

func (r *fakePositionRepo) ArchiveOpenByOwner(db *gorm.DB, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.positions {
		if p.OwnerID == ownerID && models.CanTransition(p.Status, models.PositionStatusArchived) {
			p.Status = models.PositionStatusArchived
			n++
		}
	}
	return n, nil
}

func (r *fakePositionRepo) ListPublished(db *gorm.DB, filter repositories.PositionFilter, now time.Time) ([]models.Position, int64, error) {
	out := r.filter(func(p *models.Position) bool {
		return p.Status == models.PositionStatusPublished && !p.IsDue(now)
	})
	return out, int64(len(out)), nil
}

func (r *fakePositionRepo) List(db *gorm.DB, filter repositories.PositionFilter) ([]models.Position, int64, error) {
	out := r.filter(func(p *models.Position) bool {
		return (filter.OwnerID == "" || p.OwnerID == filter.OwnerID) &&
			(filter.Status == "" || p.Status == filter.Status)
	})
	return out, int64(len(out)), nil
}

func (r *fakePositionRepo) filter(keep func(p *models.Position) bool) []models.Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Position
	for _, p := range r.positions {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

func applyPositionFields(p *models.Position, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "tier":
			p.Tier = v.(models.ListingTier)
		case "payment_reference":
			ref := v.(string)
			p.PaymentReference = &ref
		case "published_at":
			t := v.(time.Time)
			p.PublishedAt = &t
		case "expires_at":
			if t, ok := v.(time.Time); ok {
				p.ExpiresAt = &t
			} else {
				p.ExpiresAt = nil
			}
		}
	}
}

// --- payments ---

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*models.Payment{}}
}

func (r *fakePaymentRepo) Create(db *gorm.DB, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.Reference] = payment
	return nil
}

func (r *fakePaymentRepo) FindByReference(db *gorm.DB, reference string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[reference]
	if !ok {
		return nil, repositories.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) MarkPaid(db *gorm.DB, reference, providerPaymentID string, paidAt time.Time) (bool, error) {
	return r.resolve(reference, models.PaymentStatusPaid)
}

func (r *fakePaymentRepo) MarkFailed(db *gorm.DB, reference, providerPaymentID string) (bool, error) {
	return r.resolve(reference, models.PaymentStatusFailed)
}

func (r *fakePaymentRepo) resolve(reference string, status models.PaymentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[reference]
	if !ok || p.Status != models.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	return true, nil
}

// --- notifier ---

type recordingNotifier struct {
	mu       sync.Mutex
	expired  []string
	expiring []string
	failFor  map[string]bool
}

func (n *recordingNotifier) PositionExpired(ctx context.Context, position *models.Position) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[position.ID] {
		return errors.New("notification channel down")
	}
	n.expired = append(n.expired, position.ID)
	return nil
}

func (n *recordingNotifier) PositionExpiringSoon(ctx context.Context, position *models.Position) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[position.ID] {
		return errors.New("notification channel down")
	}
	n.expiring = append(n.expiring, position.ID)
	return nil
}

// --- storage ---

type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string][]byte{}}
}

func newMemDisks() (*storage.Disks, *memStorage, *memStorage) {
	private, public := newMemStorage(), newMemStorage()
	return &storage.Disks{Private: private, Public: public}, private, public
}

func (m *memStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	return nil
}

func (m *memStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, storage.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *memStorage) Exists(ctx context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *memStorage) GetURL(ctx context.Context, path string) (string, error) {
	return "https://files.test/" + path, nil
}

func (m *memStorage) GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "https://files.test/" + path + "?signed=1", nil
}

func (m *memStorage) has(path string) bool {
	ok, _ := m.Exists(context.Background(), path)
	return ok
}
