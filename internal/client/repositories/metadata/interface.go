// Package metadata stores small client settings in a key/value table:
// the device id, the signed-in user, its access token and the time of the
// last sync pass.
package metadata

import (
	"context"
	"time"
)

// Well-known keys.
const (
	KeyDeviceID    = "device_id"
	KeyUserName    = "user_name"
	KeyAccessToken = "access_token"
	KeyLastSyncAt  = "last_sync_at"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)

	// GetTime returns the zero time when the key is absent.
	GetTime(ctx context.Context, key string) (time.Time, error)
	SetTime(ctx context.Context, key string, t time.Time) error
}
