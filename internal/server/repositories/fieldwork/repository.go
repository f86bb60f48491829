// Package fieldwork persists the inspection records applied from client
// outboxes: missions, non-conformities, corrective actions, maintenance logs
// and documents.
//
// Inserts of an id that already exists return common.ErrAlreadyExists; a
// reference to a missing parent returns common.ErrMissingReference.
package fieldwork

import (
	"context"

	"github.com/dmitrijs2005/fieldsync/internal/server/models"
)

type Repository interface {
	CreateMission(ctx context.Context, m *models.Mission) error
	CreateNonConformity(ctx context.Context, nc *models.NonConformity) error
	// SetActionStatus creates or updates an action. An update older than the
	// stored ChangedAt is ignored and reported as applied=false.
	SetActionStatus(ctx context.Context, a *models.CorrectiveAction) (applied bool, err error)
	CreateMaintenanceLog(ctx context.Context, l *models.MaintenanceLog) error

	// UpsertDocument stores document metadata and returns its storage key.
	// A document that already exists keeps its original key.
	UpsertDocument(ctx context.Context, d *models.Document) (string, error)
	// ConfirmDocument marks the document uploaded. It returns
	// common.ErrNotFound if no document has that id and key.
	ConfirmDocument(ctx context.Context, id, key string) error
}
