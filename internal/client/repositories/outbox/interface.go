package outbox

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
)

var (
	ErrRecordNotFound   = errors.New("outbox record not found")
	ErrRecordNotPending = errors.New("outbox record is not pending")
)

// Repository is the outbox store used by the enqueuer, the sync engine and
// the query layer. Storage errors are always returned to the caller.
type Repository interface {
	// Add appends a PENDING record and returns its generated id.
	Add(ctx context.Context, kind models.OperationKind, payload json.RawMessage) (string, error)

	// ListAll returns every record, oldest first.
	ListAll(ctx context.Context) ([]models.OutboxRecord, error)

	// ListPending returns PENDING records in replay order.
	ListPending(ctx context.Context) ([]models.OutboxRecord, error)

	// CountPending returns the number of PENDING records.
	CountPending(ctx context.Context) (int, error)

	// MarkSent moves a PENDING record to SENT and clears last_error.
	MarkSent(ctx context.Context, id string) error

	// MarkError moves a PENDING record to ERROR with the given message.
	MarkError(ctx context.Context, id string, message string) error

	// ClearSent deletes all SENT records and reports how many were removed.
	ClearSent(ctx context.Context) (int64, error)

	// RetryAll moves every ERROR record back to PENDING.
	RetryAll(ctx context.Context) (int64, error)
}
