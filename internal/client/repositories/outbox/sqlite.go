package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/dbx"
	"github.com/dmitrijs2005/fieldsync/internal/timex"
	"github.com/google/uuid"
)

// SQLiteRepository implements Repository on top of a DBTX.
type SQLiteRepository struct {
	db    dbx.DBTX
	clock timex.Clock
	newID func() (uuid.UUID, error)
}

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock sets the clock used for created_at.
func WithClock(c timex.Clock) Option {
	return func(r *SQLiteRepository) {
		if c != nil {
			r.clock = c
		}
	}
}

// NewSQLiteRepository returns a repository bound to db.
// Record ids are UUIDv7, so they sort by creation time as well.
func NewSQLiteRepository(db dbx.DBTX, opts ...Option) *SQLiteRepository {
	r := &SQLiteRepository{db: db, clock: timex.SystemClock{}, newID: uuid.NewV7}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SQLiteRepository) Add(ctx context.Context, kind models.OperationKind, payload json.RawMessage) (string, error) {
	if kind == "" {
		return "", fmt.Errorf("%w: empty type", models.ErrInvalidOperation)
	}
	if !json.Valid(payload) {
		return "", fmt.Errorf("%w: payload is not valid JSON", models.ErrInvalidOperation)
	}

	id, err := r.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate outbox id: %w", err)
	}

	// copy so later changes to the caller's slice never reach the stored payload
	snapshot := append([]byte(nil), payload...)

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO outbox (id, type, payload, created_at, status) VALUES (?, ?, ?, ?, ?)`,
		id.String(), string(kind), snapshot, r.clock.Now().UnixNano(), string(models.StatusPending))
	if err != nil {
		return "", fmt.Errorf("failed to insert outbox record: %w", err)
	}
	return id.String(), nil
}

const selectRecords = `SELECT id, type, payload, created_at, status, last_error FROM outbox`

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.OutboxRecord, error) {
	return r.list(ctx, selectRecords+` ORDER BY created_at, seq`)
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]models.OutboxRecord, error) {
	return r.list(ctx, selectRecords+` WHERE status = ? ORDER BY created_at, seq`, string(models.StatusPending))
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.OutboxRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select outbox records: %w", err)
	}
	defer rows.Close()

	result := make([]models.OutboxRecord, 0)
	for rows.Next() {
		var (
			rec       models.OutboxRecord
			kind      string
			status    string
			createdAt int64
			lastError sql.NullString
			payload   []byte
		)
		if err := rows.Scan(&rec.ID, &kind, &payload, &createdAt, &status, &lastError); err != nil {
			return nil, fmt.Errorf("failed to scan outbox record: %w", err)
		}
		rec.Type = models.OperationKind(kind)
		rec.Status = models.Status(status)
		rec.Payload = payload
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		rec.LastError = lastError.String
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox records: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox WHERE status = ?`, string(models.StatusPending)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending records: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkSent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status = ?, last_error = NULL WHERE id = ? AND status = ?`,
		string(models.StatusSent), id, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark record %s sent: %w", id, err)
	}
	return r.checkTransition(ctx, res, id)
}

func (r *SQLiteRepository) MarkError(ctx context.Context, id string, message string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status = ?, last_error = ? WHERE id = ? AND status = ?`,
		string(models.StatusError), message, id, string(models.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark record %s failed: %w", id, err)
	}
	return r.checkTransition(ctx, res, id)
}

// checkTransition tells a missing record apart from one in the wrong state.
func (r *SQLiteRepository) checkTransition(ctx context.Context, res sql.Result, id string) error {
	err := dbx.ExpectRows(res, 1)
	if err == nil {
		return nil
	}
	if !errors.Is(err, dbx.ErrUnexpectedRowsAffected) {
		return err
	}

	var status string
	qerr := r.db.QueryRowContext(ctx, `SELECT status FROM outbox WHERE id = ?`, id).Scan(&status)
	switch {
	case errors.Is(qerr, sql.ErrNoRows):
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	case qerr != nil:
		return fmt.Errorf("failed to read record %s: %w", id, qerr)
	default:
		return fmt.Errorf("%w: %s is %s", ErrRecordNotPending, id, status)
	}
}

func (r *SQLiteRepository) ClearSent(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM outbox WHERE status = ?`, string(models.StatusSent))
	if err != nil {
		return 0, fmt.Errorf("failed to clear sent records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) RetryAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET status = ?, last_error = NULL WHERE status = ?`,
		string(models.StatusPending), string(models.StatusError))
	if err != nil {
		return 0, fmt.Errorf("failed to retry failed records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
