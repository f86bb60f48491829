package models

import "time"

// AppliedRequest is a claimed idempotency key. A second request with the
// same key is acknowledged without being applied again.
type AppliedRequest struct {
	Key       string
	Method    string
	Origin
	AppliedAt time.Time
}
