package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/dbx"
	"github.com/dmitrijs2005/rentable/internal/server/models"
	profilesrepo "github.com/dmitrijs2005/rentable/internal/server/repositories/profiles"
	refreshtokensrepo "github.com/dmitrijs2005/rentable/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/rentable/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// fakeUsersRepo keeps users by email.
type fakeUsersRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*models.User
	createErr error
	getErr    error
	created   int
	confirmed int
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{byEmail: map[string]*models.User{}}
	for _, u := range users {
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	c := *u
	c.ID = "new-user"
	c.CreatedAt = time.Now()
	f.byEmail[c.Email] = &c
	return &c, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) ConfirmEmail(_ context.Context, id string, at time.Time) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			f.confirmed++
			if u.EmailConfirmedAt == nil {
				u.EmailConfirmedAt = &at
			}
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	mu        sync.Mutex
	findOut   *models.RefreshToken
	findErr   error
	delErr    error
	createErr error

	created      []string
	deleted      []string
	deletedUsers []string
}

func (f *fakeRefreshRepo) Create(_ context.Context, _ string, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, token)
	return f.delErr
}

func (f *fakeRefreshRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return 0, f.delErr
	}
	f.deletedUsers = append(f.deletedUsers, userID)
	return 2, nil
}

type fakeProfilesRepo struct {
	rows      []models.Profile
	selectErr error
	insertErr error
	inserted  []models.Profile
	patches   []models.ProfilePatch
	column    string
	value     string
}

func (f *fakeProfilesRepo) Select(_ context.Context, column, value string) ([]models.Profile, error) {
	f.column, f.value = column, value
	return f.rows, f.selectErr
}

func (f *fakeProfilesRepo) Insert(_ context.Context, p *models.Profile) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *p)
	return nil
}

func (f *fakeProfilesRepo) Update(_ context.Context, _ string, patch models.ProfilePatch) (int64, error) {
	f.patches = append(f.patches, patch)
	return 1, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	p *fakeProfilesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profilesrepo.Repository           { return m.p }

// fakeNotifier records delivered codes.
type fakeNotifier struct {
	mu     sync.Mutex
	signup map[string]string
	magic  map[string]string
	err    error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{signup: map[string]string{}, magic: map[string]string{}}
}

func (n *fakeNotifier) SendSignupCode(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.signup[email] = code
	return nil
}

func (n *fakeNotifier) SendMagicLink(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.magic[email] = code
	return nil
}
