package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/fieldsync/internal/logging"
)

// OutboxService is the enqueuer and the read side of the outbox.
type OutboxService interface {
	// AddToOutbox snapshots op and appends it as PENDING. It must be called
	// after the local write has been committed.
	AddToOutbox(ctx context.Context, op models.Operation) (string, error)

	GetPendingCount(ctx context.Context) (int, error)
	GetOutboxItems(ctx context.Context) ([]models.OutboxRecord, error)
	ClearSentItems(ctx context.Context) (int64, error)
	RetryFailedItems(ctx context.Context) (int64, error)
}

type outboxService struct {
	repo outbox.Repository
	log  logging.Logger
}

func NewOutboxService(repo outbox.Repository, log logging.Logger) OutboxService {
	if log == nil {
		log = logging.Nop()
	}
	return &outboxService{repo: repo, log: log}
}

func (s *outboxService) AddToOutbox(ctx context.Context, op models.Operation) (string, error) {
	kind, payload, err := models.EncodeOperation(op)
	if err != nil {
		return "", err
	}
	if err := op.Validate(); err != nil {
		return "", err
	}

	id, err := s.repo.Add(ctx, kind, payload)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", kind, err)
	}
	s.log.Debug(ctx, "operation queued", "record_id", id, "type", kind)
	return id, nil
}

func (s *outboxService) GetPendingCount(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

func (s *outboxService) GetOutboxItems(ctx context.Context) ([]models.OutboxRecord, error) {
	return s.repo.ListAll(ctx)
}

func (s *outboxService) ClearSentItems(ctx context.Context) (int64, error) {
	n, err := s.repo.ClearSent(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "sent records cleared", "count", n)
	return n, nil
}

func (s *outboxService) RetryFailedItems(ctx context.Context) (int64, error) {
	n, err := s.repo.RetryAll(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "failed records re-queued", "count", n)
	return n, nil
}
