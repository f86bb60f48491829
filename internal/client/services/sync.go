package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/client/client"
	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fieldsync/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/fieldsync/internal/logging"
	"github.com/dmitrijs2005/fieldsync/internal/timex"
)

// DefaultItemTimeout bounds a single remote call during a pass.
const DefaultItemTimeout = 30 * time.Second

// SyncService drains the outbox.
type SyncService interface {
	// Sync runs one pass over the PENDING records. If a pass is already
	// running it returns at once with Skipped set and the store untouched.
	//
	// A started pass is not cancelled by ctx: it always runs to the end.
	// A non-nil error means the outbox itself could not be read or updated.
	Sync(ctx context.Context) (models.SyncResult, error)

	// Running reports whether a pass is in progress.
	Running() bool

	// LastSyncAt returns the end time of the last pass that processed at
	// least one record, or the zero time.
	LastSyncAt(ctx context.Context) (time.Time, error)
}

type SyncOption func(*syncService)

// WithItemTimeout sets the per-record timeout. Non-positive values are ignored.
func WithItemTimeout(d time.Duration) SyncOption {
	return func(s *syncService) {
		if d > 0 {
			s.itemTimeout = d
		}
	}
}

func WithClock(c timex.Clock) SyncOption {
	return func(s *syncService) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l logging.Logger) SyncOption {
	return func(s *syncService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetadata enables recording of last_sync_at.
func WithMetadata(m metadata.Repository) SyncOption {
	return func(s *syncService) { s.meta = m }
}

// WithOnPassComplete registers a callback invoked after every completed pass.
func WithOnPassComplete(fn func(models.SyncResult)) SyncOption {
	return func(s *syncService) { s.onComplete = fn }
}

type syncService struct {
	repo     outbox.Repository
	executor client.Executor

	meta        metadata.Repository
	clock       timex.Clock
	log         logging.Logger
	itemTimeout time.Duration
	onComplete  func(models.SyncResult)

	running atomic.Bool
}

func NewSyncService(repo outbox.Repository, executor client.Executor, opts ...SyncOption) SyncService {
	s := &syncService{
		repo:        repo,
		executor:    executor,
		clock:       timex.SystemClock{},
		log:         logging.Nop(),
		itemTimeout: DefaultItemTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *syncService) Running() bool {
	return s.running.Load()
}

func (s *syncService) Sync(ctx context.Context) (models.SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Debug(ctx, "sync rejected: pass in progress")
		return models.SyncResult{
			Errors:  []string{ErrSyncInProgress.Error()},
			Skipped: true,
		}, nil
	}
	defer s.running.Store(false)

	ctx = context.WithoutCancel(ctx)

	result, err := s.pass(ctx)
	if err != nil {
		s.log.Error(ctx, "sync pass aborted", "processed", result.Processed, "failed", result.Failed, "err", err)
		return result, err
	}

	s.log.Info(ctx, "sync pass finished", "processed", result.Processed, "failed", result.Failed)
	if s.onComplete != nil {
		s.onComplete(result)
	}
	return result, nil
}

func (s *syncService) pass(ctx context.Context) (models.SyncResult, error) {
	result := models.SyncResult{Errors: []string{}}

	records, err := s.repo.ListPending(ctx)
	if err != nil {
		return result, fmt.Errorf("list pending: %w", err)
	}
	s.log.Info(ctx, "sync pass started", "pending", len(records))

	for _, rec := range records {
		dispatchErr := s.dispatch(ctx, rec)
		if dispatchErr == nil {
			if err := s.repo.MarkSent(ctx, rec.ID); err != nil {
				return result, fmt.Errorf("mark %s sent: %w", rec.ID, err)
			}
			result.Processed++
			continue
		}

		msg := dispatchErr.Error()
		if err := s.repo.MarkError(ctx, rec.ID, msg); err != nil {
			return result, fmt.Errorf("mark %s failed: %w", rec.ID, err)
		}
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", rec.Type, msg))
		s.log.Warn(ctx, "outbox item failed", "record_id", rec.ID, "type", rec.Type, "err", dispatchErr)
	}

	result.Success = result.Failed == 0

	if len(records) > 0 && s.meta != nil {
		if err := s.meta.SetTime(ctx, metadata.KeyLastSyncAt, s.clock.Now()); err != nil {
			s.log.Warn(ctx, "failed to record last sync time", "err", err)
		}
	}
	return result, nil
}

// dispatch decodes and executes one record under the item timeout. The
// executor runs on the pass goroutine, so the next record is never started
// while this one is still in flight.
func (s *syncService) dispatch(ctx context.Context, rec models.OutboxRecord) (err error) {
	op, err := models.DecodeOperation(rec.Type, rec.Payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrExecutorPanic, p)
		}
	}()

	err = s.executor.Execute(ctx, rec.ID, op)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrItemTimeout, s.itemTimeout)
	}
	return err
}

func (s *syncService) LastSyncAt(ctx context.Context) (time.Time, error) {
	if s.meta == nil {
		return time.Time{}, nil
	}
	return s.meta.GetTime(ctx, metadata.KeyLastSyncAt)
}
