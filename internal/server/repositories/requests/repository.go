// Package requests stores claimed idempotency keys so that a replayed
// request is acknowledged without being applied twice.
package requests

import (
	"context"

	"github.com/dmitrijs2005/fieldsync/internal/server/models"
)

type Repository interface {
	// Claim records req.Key and reports true, or reports false when the key
	// was already claimed. Called inside the transaction that applies the
	// request, so a rolled back apply releases the key.
	Claim(ctx context.Context, req *models.AppliedRequest) (bool, error)
}
