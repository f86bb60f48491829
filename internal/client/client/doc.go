// Package client talks to the fieldsync server and bootstraps the local
// database.
//
// GRPCClient is the remote executor used by the sync engine: Execute sends
// one queued operation, tagged with the outbox record id as idempotency key,
// and maps gRPC status codes to the sentinel errors below. Callers match
// them with errors.Is:
//
//   - ErrUnavailable: the server could not be reached or timed out
//   - ErrUnauthorized: missing, invalid or expired access token
//   - ErrRejected: the server refused the operation; the message says why
//
// InitDatabase opens the SQLite file, applies the embedded goose migrations
// and returns the repositories built on it.
package client
