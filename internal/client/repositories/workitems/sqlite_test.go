package workitems

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/client/migrations"
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

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestUpsert_InsertAndUpdate(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	item := &models.WorkItem{
		ID:        "m1",
		Kind:      models.WorkItemMission,
		Title:     "Boiler audit",
		Body:      json.RawMessage(`{"site":"A"}`),
		UpdatedAt: t0,
	}
	require.NoError(t, r.Upsert(ctx, item))

	got, err := r.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Boiler audit", got.Title)
	assert.JSONEq(t, `{"site":"A"}`, string(got.Body))
	assert.True(t, t0.Equal(got.UpdatedAt))

	item.Title = "Boiler audit (rescheduled)"
	item.UpdatedAt = t0.Add(time.Hour)
	require.NoError(t, r.Upsert(ctx, item))

	got, err = r.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Boiler audit (rescheduled)", got.Title)
}

func TestUpsert_NilBodyStoredAsEmptyObject(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.WorkItem{ID: "x", Kind: models.WorkItemAction, Title: "t", UpdatedAt: t0}))
	got, err := r.GetByID(ctx, "x")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(got.Body))
}

func TestListByKind_FiltersAndOrders(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.WorkItem{ID: "m1", Kind: models.WorkItemMission, Title: "old", UpdatedAt: t0}))
	require.NoError(t, r.Upsert(ctx, &models.WorkItem{ID: "m2", Kind: models.WorkItemMission, Title: "new", UpdatedAt: t0.Add(time.Minute)}))
	require.NoError(t, r.Upsert(ctx, &models.WorkItem{ID: "n1", Kind: models.WorkItemNonConformity, Title: "nc", UpdatedAt: t0}))

	list, err := r.ListByKind(ctx, models.WorkItemMission)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "m2", list[0].ID)
	assert.Equal(t, "m1", list[1].ID)
}

func TestDeleteByID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.WorkItem{ID: "d1", Kind: models.WorkItemDocument, Title: "doc", UpdatedAt: t0}))
	require.NoError(t, r.DeleteByID(ctx, "d1"))

	_, err := r.GetByID(ctx, "d1")
	require.ErrorIs(t, err, common.ErrNotFound)

	list, err := r.ListByKind(ctx, models.WorkItemDocument)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.ErrorIs(t, r.DeleteByID(ctx, "d1"), common.ErrNotFound)
}

func TestErrorsOnClosedDB(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())
	ctx := context.Background()

	require.ErrorContains(t, r.Upsert(ctx, &models.WorkItem{ID: "x"}), "failed to upsert work item")
	_, err := r.GetByID(ctx, "x")
	require.ErrorContains(t, err, "failed to select work item")
	_, err = r.ListByKind(ctx, models.WorkItemMission)
	require.Error(t, err)
	require.ErrorContains(t, r.DeleteByID(ctx, "x"), "failed to delete work item")
}
