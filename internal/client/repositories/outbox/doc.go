// Package outbox provides the durable, append-only log of local mutations
// waiting to be replayed to the server.
//
// Records are appended with status PENDING and move through
//
//	PENDING -> SENT | ERROR
//	ERROR   -> PENDING   (RetryAll only)
//
// Status transitions are guarded in SQL: MarkSent and MarkError only touch
// PENDING rows, so a record can never be moved by two writers at once.
// Rows are removed only by ClearSent.
//
// Listings are ordered by created_at and then by insertion sequence, which is
// the replay order used by the sync engine.
package outbox
