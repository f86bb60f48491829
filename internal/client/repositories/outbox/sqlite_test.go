package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/client/migrations"
	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/timex"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	// client.RunMigrations cannot be used here: package client imports outbox.
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

func TestSchema_PendingIndexExists(t *testing.T) {
	db := setupDB(t)
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'outbox_status_created_idx'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "outbox_status_created_idx", name)
}

// fixedClock returns the same instant until moved.
type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func newRepo(t *testing.T) (*SQLiteRepository, *fixedClock) {
	t.Helper()
	clk := &fixedClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	return NewSQLiteRepository(setupDB(t), WithClock(clk)), clk
}

func add(t *testing.T, r *SQLiteRepository, kind models.OperationKind, payload string) string {
	t.Helper()
	id, err := r.Add(context.Background(), kind, json.RawMessage(payload))
	require.NoError(t, err)
	return id
}

func TestAdd_StoresPendingRecord(t *testing.T) {
	r, clk := newRepo(t)
	ctx := context.Background()

	id := add(t, r, models.KindCreateMission, `{"mission_id":"m1"}`)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
	assert.Equal(t, models.KindCreateMission, all[0].Type)
	assert.JSONEq(t, `{"mission_id":"m1"}`, string(all[0].Payload))
	assert.Equal(t, models.StatusPending, all[0].Status)
	assert.Empty(t, all[0].LastError)
	assert.True(t, clk.now.Equal(all[0].CreatedAt))
}

func TestAdd_IDsAreUnique(t *testing.T) {
	r, _ := newRepo(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := add(t, r, models.KindCreateMission, `{}`)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestAdd_CopiesPayload(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	payload := []byte(`{"title":"abc"}`)
	_, err := r.Add(ctx, models.KindCreateNonConformity, payload)
	require.NoError(t, err)
	copy(payload, `{"title":"xyz"}`)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"abc"}`, string(all[0].Payload))
}

func TestAdd_RejectsBadInput(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	_, err := r.Add(ctx, "", json.RawMessage(`{}`))
	require.ErrorIs(t, err, models.ErrInvalidOperation)

	_, err = r.Add(ctx, models.KindCreateMission, json.RawMessage(`{"broken"`))
	require.ErrorIs(t, err, models.ErrInvalidOperation)

	n, err := r.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAdd_IDGeneratorFailure(t *testing.T) {
	r, _ := newRepo(t)
	r.newID = func() (uuid.UUID, error) { return uuid.Nil, errors.New("no entropy") }

	_, err := r.Add(context.Background(), models.KindCreateMission, json.RawMessage(`{}`))
	require.ErrorContains(t, err, "no entropy")
}

func TestListPending_OrdersByCreatedAtThenInsertion(t *testing.T) {
	r, clk := newRepo(t)
	ctx := context.Background()

	late := add(t, r, models.KindCreateMission, `{"n":1}`)

	clk.now = clk.now.Add(-time.Minute)
	early1 := add(t, r, models.KindCreateNonConformity, `{"n":2}`)
	early2 := add(t, r, models.KindUpdateActionStatus, `{"n":3}`)

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, []string{early1, early2, late}, ids(pending))
}

func TestListPending_ExcludesSentAndFailed(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	a := add(t, r, models.KindCreateMission, `{}`)
	b := add(t, r, models.KindCreateMission, `{}`)
	c := add(t, r, models.KindCreateMission, `{}`)

	require.NoError(t, r.MarkSent(ctx, a))
	require.NoError(t, r.MarkError(ctx, b, "boom"))

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{c}, ids(pending))

	n, err := r.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "boom", all[1].LastError)
	assert.Equal(t, models.StatusError, all[1].Status)
}

func TestListAll_EmptyIsNotNil(t *testing.T) {
	r, _ := newRepo(t)
	all, err := r.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestMarkTransitions_OnlyFromPending(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	id := add(t, r, models.KindCreateMission, `{}`)
	require.NoError(t, r.MarkSent(ctx, id))

	err := r.MarkSent(ctx, id)
	require.ErrorIs(t, err, ErrRecordNotPending)

	err = r.MarkError(ctx, id, "late failure")
	require.ErrorIs(t, err, ErrRecordNotPending)

	err = r.MarkSent(ctx, "missing")
	require.ErrorIs(t, err, ErrRecordNotFound)

	err = r.MarkError(ctx, "missing", "x")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRetryAll_MovesOnlyFailedBackToPending(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	sent := add(t, r, models.KindCreateMission, `{}`)
	failed1 := add(t, r, models.KindCreateMission, `{}`)
	failed2 := add(t, r, models.KindCreateMission, `{}`)
	require.NoError(t, r.MarkSent(ctx, sent))
	require.NoError(t, r.MarkError(ctx, failed1, "e1"))
	require.NoError(t, r.MarkError(ctx, failed2, "e2"))

	n, err := r.RetryAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	byID := map[string]models.OutboxRecord{}
	for _, rec := range all {
		byID[rec.ID] = rec
	}
	assert.Equal(t, models.StatusSent, byID[sent].Status)
	for _, id := range []string{failed1, failed2} {
		assert.Equal(t, models.StatusPending, byID[id].Status)
		assert.Empty(t, byID[id].LastError)
	}

	// nothing left in ERROR, so a second retry is a no-op
	n, err = r.RetryAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClearSent_RemovesOnlySent(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	sent := add(t, r, models.KindCreateMission, `{}`)
	failed := add(t, r, models.KindCreateMission, `{}`)
	pending := add(t, r, models.KindCreateMission, `{}`)
	require.NoError(t, r.MarkSent(ctx, sent))
	require.NoError(t, r.MarkError(ctx, failed, "e"))

	n, err := r.ClearSent(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{failed, pending}, ids(all))
}

func TestStorageErrorsPropagate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db, WithClock(timex.SystemClock{}))
	require.NoError(t, db.Close())
	ctx := context.Background()

	_, err := r.Add(ctx, models.KindCreateMission, json.RawMessage(`{}`))
	assert.Error(t, err)
	_, err = r.ListAll(ctx)
	assert.Error(t, err)
	_, err = r.ListPending(ctx)
	assert.Error(t, err)
	_, err = r.CountPending(ctx)
	assert.Error(t, err)
	assert.Error(t, r.MarkSent(ctx, "x"))
	assert.Error(t, r.MarkError(ctx, "x", "y"))
	_, err = r.ClearSent(ctx)
	assert.Error(t, err)
	_, err = r.RetryAll(ctx)
	assert.Error(t, err)
}

func ids(recs []models.OutboxRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}
