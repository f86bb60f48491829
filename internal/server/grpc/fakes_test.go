package grpc

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/server/models"
	"github.com/dmitrijs2005/fieldsync/internal/server/services"
)

type fakeUsers struct{}

func (fakeUsers) Login(_ context.Context, user, password string) (string, error) {
	if user == "alice" && password == "pw" {
		return "good-token", nil
	}
	return "", common.ErrUnauthorized
}

func (fakeUsers) Authenticate(token string) (string, error) {
	if token == "good-token" {
		return "u-1", nil
	}
	return "", common.ErrInvalidToken
}

type call struct {
	method string
	req    services.Request
	arg    any
}

type fakeFieldwork struct {
	mu     sync.Mutex
	calls  []call
	err    error
	url    string
	docKey string
}

func (f *fakeFieldwork) record(method string, r services.Request, arg any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method, r, arg})
	return f.err
}

func (f *fakeFieldwork) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeFieldwork) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeFieldwork) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeFieldwork) CreateMission(_ context.Context, r services.Request, m *models.Mission) (services.Outcome, error) {
	return services.Applied, f.record("CreateMission", r, *m)
}

func (f *fakeFieldwork) CreateNonConformity(_ context.Context, r services.Request, nc *models.NonConformity) (services.Outcome, error) {
	return services.Applied, f.record("CreateNonConformity", r, *nc)
}

func (f *fakeFieldwork) UpdateActionStatus(_ context.Context, r services.Request, a *models.CorrectiveAction) (services.Outcome, error) {
	return services.Applied, f.record("UpdateActionStatus", r, *a)
}

func (f *fakeFieldwork) CreateMaintenanceLog(_ context.Context, r services.Request, l *models.MaintenanceLog) (services.Outcome, error) {
	return services.Applied, f.record("CreateMaintenanceLog", r, *l)
}

func (f *fakeFieldwork) RequestDocumentUpload(_ context.Context, r services.Request, d *models.Document) (string, string, error) {
	if err := f.record("RequestDocumentUpload", r, *d); err != nil {
		return "", "", err
	}
	return f.docKey, f.url, nil
}

func (f *fakeFieldwork) ConfirmDocumentUpload(_ context.Context, r services.Request, id, key string) (services.Outcome, error) {
	return services.Applied, f.record("ConfirmDocumentUpload", r, id+"@"+key)
}
