package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/dpavlenko/newsboard/internal/common"
	"github.com/dpavlenko/newsboard/internal/dbx"
	"github.com/dpavlenko/newsboard/internal/logging"
	"github.com/dpavlenko/newsboard/internal/server/admin"
	"github.com/dpavlenko/newsboard/internal/server/config"
	"github.com/dpavlenko/newsboard/internal/server/models"
	newsrepo "github.com/dpavlenko/newsboard/internal/server/repositories/news"
	sessionsrepo "github.com/dpavlenko/newsboard/internal/server/repositories/sessions"
	usersrepo "github.com/dpavlenko/newsboard/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:               "k",
		SessionLifetime:         time.Hour,
		RememberSessionLifetime: 48 * time.Hour,
	}
}

// --- fakes ---

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User

	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byEmail: map[string]*models.User{},
		byID:    map[string]*models.User{},
	}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}
	u.CreatedAt = time.Now()
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

type fakeSessionsRepo struct {
	sessions map[string]*models.Session

	deleted []string
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{sessions: map[string]*models.Session{}}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, userID string, remember bool, validity time.Duration) (*models.Session, error) {
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Remember:  remember,
		Expires:   time.Now().Add(validity),
		CreatedAt: time.Now(),
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, id string) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, id string) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSessionsRepo) PurgeExpired(ctx context.Context) (int64, error) {
	var n int64
	for id, s := range f.sessions {
		if s.Expires.Before(time.Now()) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

// fakeNewsRepo keeps records in insertion order, like the real table scan.
type fakeNewsRepo struct {
	items []*models.News
}

func (f *fakeNewsRepo) Create(ctx context.Context, item *models.News) (*models.News, error) {
	item.CreatedAt = time.Now()
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeNewsRepo) GetByID(ctx context.Context, id string) (*models.News, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeNewsRepo) Find(ctx context.Context, id, ownerID string) (*models.News, error) {
	for _, item := range f.items {
		if item.ID == id && item.OwnerID == ownerID {
			return item, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeNewsRepo) Update(ctx context.Context, id, ownerID, title, content string, private bool) error {
	for _, item := range f.items {
		if item.ID == id && item.OwnerID == ownerID {
			item.Title, item.Content, item.Private = title, content, private
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeNewsRepo) Delete(ctx context.Context, id, ownerID string) error {
	for i, item := range f.items {
		if item.ID == id && item.OwnerID == ownerID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeNewsRepo) SelectVisible(ctx context.Context, viewerID string) ([]*models.News, error) {
	var result []*models.News
	for _, item := range f.items {
		if item.OwnerID == viewerID || !item.Private {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeNewsRepo) SelectPublic(ctx context.Context) ([]*models.News, error) {
	var result []*models.News
	for _, item := range f.items {
		if !item.Private {
			result = append(result, item)
		}
	}
	return result, nil
}

type fakeAdminRepo struct {
	firstOut *models.User
	firstErr error

	updatedID      string
	updatedChanges admin.Changes
	updateErr      error

	deleteCount int64
	deleteErr   error

	deletedID   string
	deleteIDErr error
}

func (f *fakeAdminRepo) FirstMatch(ctx context.Context, pred admin.Predicate) (*models.User, error) {
	if f.firstErr != nil {
		return nil, f.firstErr
	}
	return f.firstOut, nil
}

func (f *fakeAdminRepo) UpdateByID(ctx context.Context, id string, changes admin.Changes) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedID = id
	f.updatedChanges = changes
	return nil
}

func (f *fakeAdminRepo) DeleteMatching(ctx context.Context, pred admin.Predicate) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.deleteCount, nil
}

func (f *fakeAdminRepo) DeleteByID(ctx context.Context, id string) error {
	if f.deleteIDErr != nil {
		return f.deleteIDErr
	}
	f.deletedID = id
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
	n *fakeNewsRepo
	a *fakeAdminRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		s: newFakeSessionsRepo(),
		n: &fakeNewsRepo{},
		a: &fakeAdminRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository             { return m.u }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository       { return m.s }
func (m *fakeRepoManager) News(db dbx.DBTX) newsrepo.Repository               { return m.n }
func (m *fakeRepoManager) Admin(db dbx.DBTX) admin.Repository                 { return m.a }
