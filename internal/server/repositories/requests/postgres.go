package requests

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fieldsync/internal/dbx"
	"github.com/dmitrijs2005/fieldsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Claim(ctx context.Context, req *models.AppliedRequest) (bool, error) {
	query :=
		`INSERT INTO applied_requests (key, method, user_id, device_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, req.Key, req.Method, req.UserID, req.DeviceID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
