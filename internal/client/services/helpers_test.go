package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/client/client"
	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) *client.Repositories {
	t.Helper()
	repos, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "fieldsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

// fakeExecutor records calls and answers with fn (nil fn means success).
type fakeExecutor struct {
	mu    sync.Mutex
	calls []execCall
	fn    func(ctx context.Context, id string, op models.Operation) error
}

type execCall struct {
	id string
	op models.Operation
}

func (f *fakeExecutor) Execute(ctx context.Context, id string, op models.Operation) error {
	f.mu.Lock()
	f.calls = append(f.calls, execCall{id: id, op: op})
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, id, op)
}

func (f *fakeExecutor) callIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		ids = append(ids, c.id)
	}
	return ids
}

func (f *fakeExecutor) set(fn func(ctx context.Context, id string, op models.Operation) error) {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
}

// stepClock advances by one millisecond on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func statuses(t *testing.T, svc OutboxService) map[string]models.Status {
	t.Helper()
	items, err := svc.GetOutboxItems(context.Background())
	require.NoError(t, err)
	out := make(map[string]models.Status, len(items))
	for _, it := range items {
		out[it.ID] = it.Status
	}
	return out
}

func mission(n string) models.CreateMission {
	return models.CreateMission{MissionID: "m-" + n, Title: "Mission " + n, Site: "Site " + n}
}
