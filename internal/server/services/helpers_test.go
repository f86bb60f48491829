package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/dbx"
	"github.com/dmitrijs2005/fieldsync/internal/server/models"
	"github.com/dmitrijs2005/fieldsync/internal/server/repositories/fieldwork"
	"github.com/dmitrijs2005/fieldsync/internal/server/repositories/requests"
	"github.com/dmitrijs2005/fieldsync/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

type fakeUsers struct {
	byName    map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "u-" + u.UserName
	f.byName[u.UserName] = u
	return u, nil
}

func (f *fakeUsers) GetUserByLogin(_ context.Context, name string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[name]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

// fakeRequests remembers claimed keys; claims made in a rolled back
// transaction are not undone, which the tests account for.
type fakeRequests struct {
	mu      sync.Mutex
	claimed map[string]models.AppliedRequest
	err     error
}

func (f *fakeRequests) Claim(_ context.Context, r *models.AppliedRequest) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.claimed[r.Key]; ok {
		return false, nil
	}
	f.claimed[r.Key] = *r
	return true, nil
}

type fakeFieldwork struct {
	missions  []models.Mission
	ncs       []models.NonConformity
	actions   []models.CorrectiveAction
	logs      []models.MaintenanceLog
	docs      map[string]models.Document
	confirmed []string
	stale     bool
	err       error
}

func (f *fakeFieldwork) CreateMission(_ context.Context, m *models.Mission) error {
	if f.err != nil {
		return f.err
	}
	f.missions = append(f.missions, *m)
	return nil
}

func (f *fakeFieldwork) CreateNonConformity(_ context.Context, nc *models.NonConformity) error {
	if f.err != nil {
		return f.err
	}
	f.ncs = append(f.ncs, *nc)
	return nil
}

func (f *fakeFieldwork) SetActionStatus(_ context.Context, a *models.CorrectiveAction) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.stale {
		return false, nil
	}
	f.actions = append(f.actions, *a)
	return true, nil
}

func (f *fakeFieldwork) CreateMaintenanceLog(_ context.Context, l *models.MaintenanceLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeFieldwork) UpsertDocument(_ context.Context, d *models.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if existing, ok := f.docs[d.ID]; ok {
		return existing.StorageKey, nil
	}
	f.docs[d.ID] = *d
	return d.StorageKey, nil
}

func (f *fakeFieldwork) ConfirmDocument(_ context.Context, id, key string) error {
	if f.err != nil {
		return f.err
	}
	f.confirmed = append(f.confirmed, id+"@"+key)
	return nil
}

type fakeRM struct {
	users     *fakeUsers
	requests  *fakeRequests
	fieldwork *fakeFieldwork
}

func newFakeRM() *fakeRM {
	return &fakeRM{
		users:     &fakeUsers{byName: map[string]*models.User{}},
		requests:  &fakeRequests{claimed: map[string]models.AppliedRequest{}},
		fieldwork: &fakeFieldwork{docs: map[string]models.Document{}},
	}
}

func (m *fakeRM) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRM) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRM) Requests(dbx.DBTX) requests.Repository        { return m.requests }
func (m *fakeRM) Fieldwork(dbx.DBTX) fieldwork.Repository      { return m.fieldwork }

type recordedObservation struct {
	kind, outcome string
}

type fakeRecorder struct {
	mu  sync.Mutex
	obs []recordedObservation
}

func (r *fakeRecorder) Observe(kind, outcome string, _ time.Duration) {
	r.mu.Lock()
	r.obs = append(r.obs, recordedObservation{kind, outcome})
	r.mu.Unlock()
}

type fakePresigner struct {
	key, contentType string
	size             int64
	err              error
}

func (p *fakePresigner) PresignPut(_ context.Context, key, contentType string, size int64) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.key, p.contentType, p.size = key, contentType, size
	return "https://s3.test/" + key + "?sig=1", nil
}
