package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/dbx"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/categories"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/plants"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/systems"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memUsers is an in-memory users.Repository keyed by email.
type memUsers struct {
	mu     sync.Mutex
	byMail map[string]*models.User
	nextID int64
	calls  int

	getErr    error
	createErr error
	updateErr error

	// beforeConsume runs ahead of ConsumeOTP, e.g. to replace the code.
	beforeConsume func()
}

func newMemUsers() *memUsers {
	return &memUsers{byMail: map[string]*models.User{}}
}

func (m *memUsers) find(id int64) *models.User {
	for _, u := range m.byMail {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.byMail[u.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	m.byMail[u.Email] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byMail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if u := m.find(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) SetOTP(_ context.Context, userID int64, code string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.updateErr != nil {
		return m.updateErr
	}
	u := m.find(userID)
	if u == nil {
		return common.ErrorNotFound
	}
	u.OTPCode, u.OTPExpiresAt = &code, &expiresAt
	return nil
}

func (m *memUsers) ClearOTP(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	u := m.find(userID)
	if u == nil {
		return common.ErrorNotFound
	}
	u.OTPCode, u.OTPExpiresAt = nil, nil
	return nil
}

func (m *memUsers) ConsumeOTP(_ context.Context, userID int64, code string, now time.Time) error {
	if m.beforeConsume != nil {
		m.beforeConsume()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	u := m.find(userID)
	if u == nil {
		return common.ErrorNotFound
	}
	if !u.HasPendingOTP() || *u.OTPCode != code || !u.OTPExpiresAt.After(now) {
		return common.ErrInvalidOrExpiredOTP
	}
	u.OTPCode, u.OTPExpiresAt = nil, nil
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, userID int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.updateErr != nil {
		return m.updateErr
	}
	u := m.find(userID)
	if u == nil {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) SetRole(_ context.Context, email, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	u, ok := m.byMail[email]
	if !ok {
		return common.ErrorNotFound
	}
	u.Role = role
	return nil
}

func (m *memUsers) snapshot(email string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byMail[email]
}

type fakeCategories struct {
	listOut   *models.ListResult[models.Category]
	lastQuery models.ListQuery
	created   *models.Category
	patch     *models.CategoryPatch
	err       error
}

func (f *fakeCategories) List(_ context.Context, q models.ListQuery) (*models.ListResult[models.Category], error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.listOut, nil
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	c.ID = 1
	f.created = c
	return c, nil
}

func (f *fakeCategories) Update(_ context.Context, _ int64, p models.CategoryPatch) error {
	f.patch = &p
	return f.err
}

func (f *fakeCategories) Delete(context.Context, int64) error { return f.err }

type fakePlants struct {
	listOut          *models.ListResult[models.Plant]
	lastQuery        models.ListQuery
	total, published int
	getOut           *models.Plant
	created          *models.Plant
	patch            *models.PlantPatch
	err              error
}

func (f *fakePlants) List(_ context.Context, q models.ListQuery) (*models.ListResult[models.Plant], error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.listOut, nil
}

func (f *fakePlants) PublishedStats(context.Context) (int, int, error) {
	return f.total, f.published, f.err
}

func (f *fakePlants) Get(context.Context, int64) (*models.Plant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.getOut, nil
}

func (f *fakePlants) Create(_ context.Context, p *models.Plant) (*models.Plant, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.ID = 10
	f.created = p
	return p, nil
}

func (f *fakePlants) Update(_ context.Context, _ int64, p models.PlantPatch) error {
	f.patch = &p
	return f.err
}

func (f *fakePlants) Delete(context.Context, int64) error { return f.err }

type fakeSystems struct {
	list   []models.System
	exists map[int64]bool
	err    error
}

func (f *fakeSystems) List(context.Context) ([]models.System, error) { return f.list, f.err }

func (f *fakeSystems) Exists(_ context.Context, id int64) (bool, error) {
	return f.exists[id], f.err
}

type fakeRepoManager struct {
	u *memUsers
	c *fakeCategories
	p *fakePlants
	s *fakeSystems
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Categories(dbx.DBTX) categories.Repository    { return m.c }
func (m *fakeRepoManager) Plants(dbx.DBTX) plants.Repository            { return m.p }
func (m *fakeRepoManager) Systems(dbx.DBTX) systems.Repository          { return m.s }

type fakeNotifier struct {
	mu    sync.Mutex
	sent  map[string]string
	err   error
	calls int
}

func (f *fakeNotifier) Send(_ context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.sent == nil {
		f.sent = map[string]string{}
	}
	f.sent[to] = code
	return nil
}

func (f *fakeNotifier) last(to string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[to]
}
