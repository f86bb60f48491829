package services

import "errors"

var (
	// ErrSyncInProgress is reported in SyncResult.Errors when a pass is
	// rejected because another one is running.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrNotQueued means the local write succeeded but the change could not
	// be added to the outbox.
	ErrNotQueued = errors.New("saved locally but not queued for sync")

	ErrItemTimeout    = errors.New("operation timed out")
	ErrExecutorPanic  = errors.New("executor panicked")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrAttachmentPath = errors.New("attachment is not a regular file")
)
