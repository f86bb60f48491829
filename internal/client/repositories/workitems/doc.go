// Package workitems persists the local copies of missions, non-conformities,
// corrective actions, maintenance logs and documents.
//
// Use-cases write here first and then enqueue the matching outbox operation.
// Rows are soft-deleted; listings skip deleted rows.
//
//	repo := workitems.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, item)
//	missions, _ := repo.ListByKind(ctx, models.WorkItemMission)
package workitems
