package fieldwork

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/dbx"
	"github.com/dmitrijs2005/fieldsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateMission(ctx context.Context, m *models.Mission) error {
	query :=
		`INSERT INTO missions (id, title, site, description, inspector, scheduled_at, created_by, device_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Title, m.Site, m.Description, m.Inspector, nullTime(m.ScheduledAt), m.UserID, m.DeviceID)
	return translate("mission", m.ID, err)
}

func (r *PostgresRepository) CreateNonConformity(ctx context.Context, nc *models.NonConformity) error {
	findings := nc.Findings
	if findings == nil {
		findings = []string{}
	}
	raw, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("encode findings: %w", err)
	}

	query :=
		`INSERT INTO non_conformities (id, mission_id, title, description, severity, findings, created_by, device_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		nc.ID, nullString(nc.MissionID), nc.Title, nc.Description, nc.Severity, string(raw), nc.UserID, nc.DeviceID)
	return translate("non-conformity", nc.ID, err)
}

func (r *PostgresRepository) SetActionStatus(ctx context.Context, a *models.CorrectiveAction) (bool, error) {
	query :=
		`INSERT INTO corrective_actions (id, non_conformity_id, status, comment, changed_at, updated_by, device_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET status = EXCLUDED.status,
		     comment = EXCLUDED.comment,
		     changed_at = EXCLUDED.changed_at,
		     updated_by = EXCLUDED.updated_by,
		     device_id = EXCLUDED.device_id
		 WHERE corrective_actions.changed_at <= EXCLUDED.changed_at`

	res, err := r.db.ExecContext(ctx, query,
		a.ID, nullString(a.NonConformityID), a.Status, a.Comment, a.ChangedAt, a.UserID, a.DeviceID)
	if err != nil {
		return false, translate("action", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) CreateMaintenanceLog(ctx context.Context, l *models.MaintenanceLog) error {
	query :=
		`INSERT INTO maintenance_logs (id, equipment_id, title, notes, duration_minutes, performed_at, created_by, device_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.EquipmentID, l.Title, l.Notes, l.DurationMinutes, nullTime(l.PerformedAt), l.UserID, l.DeviceID)
	return translate("maintenance log", l.ID, err)
}

func (r *PostgresRepository) UpsertDocument(ctx context.Context, d *models.Document) (string, error) {
	query :=
		`INSERT INTO documents (id, owner_id, file_name, content_type, size, sha256, storage_key, created_by, device_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE
		 SET file_name = EXCLUDED.file_name,
		     content_type = EXCLUDED.content_type,
		     size = EXCLUDED.size,
		     sha256 = EXCLUDED.sha256
		 RETURNING storage_key`

	var key string
	err := r.db.QueryRowContext(ctx, query,
		d.ID, d.OwnerID, d.FileName, d.ContentType, d.Size, d.SHA256, d.StorageKey, d.UserID, d.DeviceID).Scan(&key)
	if err != nil {
		return "", translate("document", d.ID, err)
	}
	return key, nil
}

func (r *PostgresRepository) ConfirmDocument(ctx context.Context, id, key string) error {
	query :=
		`UPDATE documents SET uploaded = TRUE
		 WHERE id = $1 AND storage_key = $2`

	res, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := dbx.ExpectRows(res, 1); err != nil {
		if errors.Is(err, dbx.ErrUnexpectedRowsAffected) {
			return fmt.Errorf("document %s with key %s: %w", id, key, common.ErrNotFound)
		}
		return err
	}
	return nil
}

func translate(what, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%s %s: %w", what, id, common.ErrAlreadyExists)
	case dbx.IsForeignKeyViolation(err):
		return fmt.Errorf("%s %s: %w", what, id, common.ErrMissingReference)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
