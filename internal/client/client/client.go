package client

import (
	"context"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
)

// Executor performs one queued operation against the server. id is the
// outbox record id and is sent as the idempotency key.
type Executor interface {
	Execute(ctx context.Context, id string, op models.Operation) error
}

type Client interface {
	Executor
	Close() error
	Ping(ctx context.Context) error
	Login(ctx context.Context, username, password string) (string, error)
	SetAccessToken(token string)
}
