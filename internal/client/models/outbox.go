// Package models defines client-side data models: outbox records, the closed
// set of queued operations, local work items and sync summaries.
package models

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an outbox record.
//
//	PENDING --(remote call succeeds)--> SENT
//	PENDING --(remote call fails)-----> ERROR
//	ERROR   --(user retry)------------> PENDING
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusError   Status = "ERROR"
)

// OutboxRecord is one queued mutation awaiting replay to the server.
type OutboxRecord struct {
	// ID is generated at enqueue time and doubles as the idempotency key.
	ID string

	Type OperationKind

	// Payload is the JSON snapshot taken at enqueue time. It is never updated.
	Payload json.RawMessage

	CreatedAt time.Time

	Status Status

	// LastError is set only while Status is ERROR.
	LastError string
}

// SyncResult summarises one sync pass.
type SyncResult struct {
	Success   bool
	Processed int
	Failed    int
	Errors    []string

	// Skipped is true when the pass was rejected because another one was
	// already running.
	Skipped bool
}
