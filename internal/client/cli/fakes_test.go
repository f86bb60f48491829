package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/client/config"
	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/logging"
)

type fakeAuth struct {
	mu         sync.Mutex
	loginErr   error
	logoutErr  error
	pingErr    error
	pings      int
	loggedUser string
	password   string
}

func (f *fakeAuth) Login(_ context.Context, u, p string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.loggedUser, f.password = u, p
	return nil
}
func (f *fakeAuth) RestoreSession(context.Context) (string, error) { return f.loggedUser, nil }
func (f *fakeAuth) Logout(context.Context) error                   { return f.logoutErr }
func (f *fakeAuth) Close(context.Context) error                    { return nil }
func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeAuth) setPingErr(err error) {
	f.mu.Lock()
	f.pingErr = err
	f.mu.Unlock()
}

type fakeOutbox struct {
	records []models.OutboxRecord
	pending int
	err     error
	retried int64
	cleared int64
}

func (f *fakeOutbox) AddToOutbox(context.Context, models.Operation) (string, error) {
	return "", f.err
}
func (f *fakeOutbox) GetPendingCount(context.Context) (int, error) { return f.pending, f.err }
func (f *fakeOutbox) GetOutboxItems(context.Context) ([]models.OutboxRecord, error) {
	return f.records, f.err
}
func (f *fakeOutbox) ClearSentItems(context.Context) (int64, error)   { return f.cleared, f.err }
func (f *fakeOutbox) RetryFailedItems(context.Context) (int64, error) { return f.retried, f.err }

type fakeSync struct {
	mu      sync.Mutex
	calls   int
	result  models.SyncResult
	err     error
	running bool
	last    time.Time
}

func (f *fakeSync) Sync(context.Context) (models.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}
func (f *fakeSync) Running() bool                                  { return f.running }
func (f *fakeSync) LastSyncAt(context.Context) (time.Time, error) { return f.last, nil }

func (f *fakeSync) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFieldwork struct {
	id       string
	err      error
	mission  models.CreateMission
	nc       models.CreateNonConformity
	action   models.UpdateActionStatus
	logEntry models.CreateMaintenanceLog
	docPath  string
	docOwner string
	listKind models.WorkItemKind
	items    []models.WorkItem
}

func (f *fakeFieldwork) CreateMission(_ context.Context, m models.CreateMission) (string, error) {
	f.mission = m
	return f.id, f.err
}
func (f *fakeFieldwork) CreateNonConformity(_ context.Context, nc models.CreateNonConformity) (string, error) {
	f.nc = nc
	return f.id, f.err
}
func (f *fakeFieldwork) UpdateActionStatus(_ context.Context, u models.UpdateActionStatus) error {
	f.action = u
	return f.err
}
func (f *fakeFieldwork) CreateMaintenanceLog(_ context.Context, l models.CreateMaintenanceLog) (string, error) {
	f.logEntry = l
	return f.id, f.err
}
func (f *fakeFieldwork) UploadDocument(_ context.Context, path, owner string) (string, error) {
	f.docPath, f.docOwner = path, owner
	return f.id, f.err
}
func (f *fakeFieldwork) List(_ context.Context, kind models.WorkItemKind) ([]models.WorkItem, error) {
	f.listKind = kind
	return f.items, f.err
}

type testApp struct {
	*App
	auth      *fakeAuth
	outbox    *fakeOutbox
	sync      *fakeSync
	fieldwork *fakeFieldwork
	out       *bytes.Buffer
}

// newTestApp builds an App over fakes; input is what the user types.
func newTestApp(input string) *testApp {
	ta := &testApp{
		auth:      &fakeAuth{},
		outbox:    &fakeOutbox{},
		sync:      &fakeSync{},
		fieldwork: &fakeFieldwork{},
		out:       &bytes.Buffer{},
	}
	ta.App = &App{
		config:    &config.Config{OnlineCheckInterval: time.Second, AutoSync: true},
		auth:      ta.auth,
		outbox:    ta.outbox,
		sync:      ta.sync,
		fieldwork: ta.fieldwork,
		log:       logging.Nop(),
		reader:    bufio.NewReader(strings.NewReader(input)),
		out:       ta.out,
	}
	return ta
}
