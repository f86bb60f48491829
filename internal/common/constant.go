package common

// Outgoing gRPC metadata keys.
const (
	AccessTokenHeaderName    = "access_token"
	IdempotencyKeyHeaderName = "idempotency-key"
	DeviceIDHeaderName       = "device-id"
)
