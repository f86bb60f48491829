package workitems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, w *models.WorkItem) error {
	query := `INSERT INTO workitems (id, kind, title, body, updated_at, deleted)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET kind = excluded.kind,
				title = excluded.title,
				body = excluded.body,
				updated_at = excluded.updated_at,
				deleted = excluded.deleted
	`
	body := []byte(w.Body)
	if body == nil {
		body = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx, query,
		w.ID, string(w.Kind), w.Title, body, w.UpdatedAt.UnixNano(), w.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert work item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.WorkItem, error) {
	query := `SELECT id, kind, title, body, updated_at, deleted FROM workitems WHERE id = ? AND deleted = 0`
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select work item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) ListByKind(ctx context.Context, kind models.WorkItemKind) ([]models.WorkItem, error) {
	query := `SELECT id, kind, title, body, updated_at, deleted FROM workitems
			WHERE kind = ? AND deleted = 0 ORDER BY updated_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to select work items: %w", err)
	}
	defer rows.Close()

	var result []models.WorkItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByID marks an item as deleted. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE workitems SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work item: %w", err)
	}
	if err := dbx.ExpectRows(res, 1); err != nil {
		return fmt.Errorf("%w: %s", common.ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.WorkItem, error) {
	var (
		item      models.WorkItem
		kind      string
		body      []byte
		updatedAt int64
	)
	if err := s.Scan(&item.ID, &kind, &item.Title, &body, &updatedAt, &item.Deleted); err != nil {
		return nil, err
	}
	item.Kind = models.WorkItemKind(kind)
	item.Body = body
	item.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &item, nil
}
