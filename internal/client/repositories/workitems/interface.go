package workitems

import (
	"context"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
)

type Repository interface {
	// Upsert inserts the item or replaces an existing one with the same id.
	Upsert(ctx context.Context, item *models.WorkItem) error

	// GetByID returns common.ErrNotFound for unknown or deleted ids.
	GetByID(ctx context.Context, id string) (*models.WorkItem, error)

	// ListByKind returns live items of a kind, most recently updated first.
	ListByKind(ctx context.Context, kind models.WorkItemKind) ([]models.WorkItem, error)

	// DeleteByID soft-deletes an item.
	DeleteByID(ctx context.Context, id string) error
}
