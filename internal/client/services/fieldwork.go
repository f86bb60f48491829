package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/client/repositories/workitems"
	"github.com/dmitrijs2005/fieldsync/internal/filex"
	"github.com/dmitrijs2005/fieldsync/internal/logging"
	"github.com/dmitrijs2005/fieldsync/internal/timex"
	"github.com/google/uuid"
)

// FieldworkService holds the mutating use-cases. Each one writes the local
// work item first and then enqueues the matching operation. If enqueueing
// fails the local write is kept, and the returned error wraps ErrNotQueued
// next to the new id.
type FieldworkService interface {
	CreateMission(ctx context.Context, m models.CreateMission) (string, error)
	CreateNonConformity(ctx context.Context, nc models.CreateNonConformity) (string, error)
	UpdateActionStatus(ctx context.Context, u models.UpdateActionStatus) error
	CreateMaintenanceLog(ctx context.Context, l models.CreateMaintenanceLog) (string, error)
	// UploadDocument snapshots the file at path into the attachments
	// directory and queues its upload.
	UploadDocument(ctx context.Context, path, ownerID string) (string, error)

	List(ctx context.Context, kind models.WorkItemKind) ([]models.WorkItem, error)
}

type fieldworkService struct {
	items          workitems.Repository
	outbox         OutboxService
	attachmentsDir string
	clock          timex.Clock
	log            logging.Logger
}

func NewFieldworkService(items workitems.Repository, outbox OutboxService, attachmentsDir string, clock timex.Clock, log logging.Logger) FieldworkService {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &fieldworkService{items: items, outbox: outbox, attachmentsDir: attachmentsDir, clock: clock, log: log}
}

func (s *fieldworkService) CreateMission(ctx context.Context, m models.CreateMission) (string, error) {
	if m.MissionID == "" {
		m.MissionID = uuid.NewString()
	}
	if m.ScheduledAt.IsZero() {
		m.ScheduledAt = s.clock.Now()
	}
	return created(m.MissionID, s.record(ctx, m.MissionID, models.WorkItemMission, m.Title, m))
}

func (s *fieldworkService) CreateNonConformity(ctx context.Context, nc models.CreateNonConformity) (string, error) {
	if nc.NonConformityID == "" {
		nc.NonConformityID = uuid.NewString()
	}
	// detach from the caller's slice
	nc.Findings = append([]string(nil), nc.Findings...)
	return created(nc.NonConformityID, s.record(ctx, nc.NonConformityID, models.WorkItemNonConformity, nc.Title, nc))
}

func (s *fieldworkService) UpdateActionStatus(ctx context.Context, u models.UpdateActionStatus) error {
	if u.ChangedAt.IsZero() {
		u.ChangedAt = s.clock.Now()
	}
	return s.record(ctx, u.ActionID, models.WorkItemAction, u.Status, u)
}

func (s *fieldworkService) CreateMaintenanceLog(ctx context.Context, l models.CreateMaintenanceLog) (string, error) {
	if l.LogID == "" {
		l.LogID = uuid.NewString()
	}
	if l.PerformedAt.IsZero() {
		l.PerformedAt = s.clock.Now()
	}
	return created(l.LogID, s.record(ctx, l.LogID, models.WorkItemMaintenanceLog, l.Title, l))
}

func (s *fieldworkService) UploadDocument(ctx context.Context, path, ownerID string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrAttachmentPath, path)
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(path))
	snap, err := filex.CopyFile(path, filepath.Join(s.attachmentsDir, id+ext))
	if err != nil {
		return "", fmt.Errorf("snapshot attachment: %w", err)
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	op := models.UploadDocument{
		DocumentID:  id,
		OwnerID:     ownerID,
		FileName:    filepath.Base(path),
		ContentType: contentType,
		LocalPath:   snap.Path,
		Size:        snap.Size,
		SHA256:      snap.SHA256,
	}
	id, err = created(id, s.record(ctx, id, models.WorkItemDocument, op.FileName, op))
	if id == "" {
		_ = os.Remove(snap.Path)
	}
	return id, err
}

// created returns id unless the local write itself failed.
func created(id string, err error) (string, error) {
	if err != nil && !errors.Is(err, ErrNotQueued) {
		return "", err
	}
	return id, err
}

func (s *fieldworkService) List(ctx context.Context, kind models.WorkItemKind) ([]models.WorkItem, error) {
	return s.items.ListByKind(ctx, kind)
}

func (s *fieldworkService) record(ctx context.Context, id string, kind models.WorkItemKind, title string, op models.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	item := &models.WorkItem{ID: id, Kind: kind, Title: title, Body: body, UpdatedAt: s.clock.Now()}
	if err := s.items.Upsert(ctx, item); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	if _, err := s.outbox.AddToOutbox(ctx, op); err != nil {
		s.log.Warn(ctx, "local change not queued", "id", id, "kind", kind, "err", err)
		return fmt.Errorf("%w: %w", ErrNotQueued, err)
	}
	return nil
}
