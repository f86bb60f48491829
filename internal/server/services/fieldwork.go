package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/dbx"
	"github.com/dmitrijs2005/fieldsync/internal/logging"
	"github.com/dmitrijs2005/fieldsync/internal/server/metrics"
	"github.com/dmitrijs2005/fieldsync/internal/server/models"
	"github.com/dmitrijs2005/fieldsync/internal/server/repositories/fieldwork"
	"github.com/dmitrijs2005/fieldsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fieldsync/internal/timex"
)

// Operation kinds, shared with the client outbox.
const (
	KindCreateMission        = "CREATE_MISSION"
	KindCreateNonConformity  = "CREATE_NC"
	KindUpdateActionStatus   = "UPDATE_ACTION_STATUS"
	KindCreateMaintenanceLog = "CREATE_MAINTENANCE_LOG"
	KindUploadDocument       = "UPLOAD_DOCUMENT"
)

// Outcome says whether a request changed state or was a replay.
type Outcome string

const (
	Applied   Outcome = "applied"
	Duplicate Outcome = "duplicate"
)

// Request identifies one client delivery. Key is the client's outbox record
// id and is stable across retries.
type Request struct {
	Key string
	models.Origin
}

// FieldworkService applies client operations at most once per idempotency
// key: the key is claimed in the same transaction that applies the change.
type FieldworkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   Presigner
	metrics     metrics.Recorder
	clock       timex.Clock
	log         logging.Logger
}

func NewFieldworkService(db *sql.DB, m repomanager.RepositoryManager, p Presigner, rec metrics.Recorder, log logging.Logger) *FieldworkService {
	if rec == nil {
		rec = metrics.Nop()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &FieldworkService{
		db:          db,
		repomanager: m,
		presigner:   p,
		metrics:     rec,
		clock:       timex.SystemClock{},
		log:         log,
	}
}

func (s *FieldworkService) CreateMission(ctx context.Context, r Request, m *models.Mission) (Outcome, error) {
	m.Origin = r.Origin
	return s.apply(ctx, r, KindCreateMission,
		func() error { return required("mission", "id", m.ID, "title", m.Title, "site", m.Site) },
		func(ctx context.Context, repo fieldwork.Repository) error { return repo.CreateMission(ctx, m) },
	)
}

func (s *FieldworkService) CreateNonConformity(ctx context.Context, r Request, nc *models.NonConformity) (Outcome, error) {
	nc.Origin = r.Origin
	return s.apply(ctx, r, KindCreateNonConformity,
		func() error {
			if err := required("non-conformity", "id", nc.ID, "title", nc.Title); err != nil {
				return err
			}
			if !models.Severities[nc.Severity] {
				return fmt.Errorf("%w: unknown severity %q", common.ErrValidation, nc.Severity)
			}
			return nil
		},
		func(ctx context.Context, repo fieldwork.Repository) error { return repo.CreateNonConformity(ctx, nc) },
	)
}

func (s *FieldworkService) UpdateActionStatus(ctx context.Context, r Request, a *models.CorrectiveAction) (Outcome, error) {
	a.Origin = r.Origin
	if a.ChangedAt.IsZero() {
		a.ChangedAt = s.clock.Now()
	}
	return s.apply(ctx, r, KindUpdateActionStatus,
		func() error {
			if err := required("action", "id", a.ID, "status", a.Status); err != nil {
				return err
			}
			if !models.ActionStatuses[a.Status] {
				return fmt.Errorf("%w: unknown action status %q", common.ErrValidation, a.Status)
			}
			return nil
		},
		func(ctx context.Context, repo fieldwork.Repository) error {
			applied, err := repo.SetActionStatus(ctx, a)
			if err == nil && !applied {
				s.log.Info(ctx, "stale action status ignored", "action_id", a.ID, "changed_at", a.ChangedAt)
			}
			return err
		},
	)
}

func (s *FieldworkService) CreateMaintenanceLog(ctx context.Context, r Request, l *models.MaintenanceLog) (Outcome, error) {
	l.Origin = r.Origin
	return s.apply(ctx, r, KindCreateMaintenanceLog,
		func() error {
			if err := required("maintenance log", "id", l.ID, "equipment_id", l.EquipmentID, "title", l.Title); err != nil {
				return err
			}
			if l.DurationMinutes < 0 {
				return fmt.Errorf("%w: negative duration", common.ErrValidation)
			}
			return nil
		},
		func(ctx context.Context, repo fieldwork.Repository) error { return repo.CreateMaintenanceLog(ctx, l) },
	)
}

// RequestDocumentUpload registers the document and returns its storage key
// with a presigned PUT URL. It may be repeated: the key stays the same and a
// fresh URL is issued each time.
func (s *FieldworkService) RequestDocumentUpload(ctx context.Context, r Request, d *models.Document) (key, url string, err error) {
	d.Origin = r.Origin
	if err := required("document", "id", d.ID, "file_name", d.FileName, "sha256", d.SHA256); err != nil {
		return "", "", err
	}
	if d.Size < 0 || d.FileName != path.Base(d.FileName) {
		return "", "", fmt.Errorf("%w: bad document size or file name", common.ErrValidation)
	}

	d.StorageKey = NewStorageKey(s.clock.Now())
	key, err = s.repomanager.Fieldwork(s.db).UpsertDocument(ctx, d)
	if err != nil {
		return "", "", err
	}

	url, err = s.presigner.PresignPut(ctx, key, d.ContentType, d.Size)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// ConfirmDocumentUpload marks an uploaded document as complete.
func (s *FieldworkService) ConfirmDocumentUpload(ctx context.Context, r Request, documentID, key string) (Outcome, error) {
	return s.apply(ctx, r, KindUploadDocument,
		func() error { return required("document confirmation", "document_id", documentID, "key", key) },
		func(ctx context.Context, repo fieldwork.Repository) error {
			return repo.ConfirmDocument(ctx, documentID, key)
		},
	)
}

// apply validates, then claims r.Key and runs fn in one transaction. A key
// that was already claimed is acknowledged as Duplicate without running fn.
func (s *FieldworkService) apply(
	ctx context.Context,
	r Request,
	kind string,
	validate func() error,
	fn func(ctx context.Context, repo fieldwork.Repository) error,
) (outcome Outcome, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(kind, metricOutcome(outcome, err), time.Since(start))
		if err != nil {
			s.log.Warn(ctx, "operation not applied", "kind", kind, "key", r.Key, "device_id", r.DeviceID, "err", err)
		}
	}()

	if r.Key == "" {
		return "", fmt.Errorf("%w: missing idempotency key", common.ErrValidation)
	}
	if err := validate(); err != nil {
		return "", err
	}

	outcome = Applied
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		claimed, err := s.repomanager.Requests(tx).Claim(ctx, &models.AppliedRequest{
			Key:    r.Key,
			Method: kind,
			Origin: r.Origin,
		})
		if err != nil {
			return err
		}
		if !claimed {
			outcome = Duplicate
			return nil
		}
		return fn(ctx, s.repomanager.Fieldwork(tx))
	})
	if err != nil {
		return "", err
	}

	s.log.Debug(ctx, "operation handled", "kind", kind, "key", r.Key, "outcome", outcome)
	return outcome, nil
}

func metricOutcome(o Outcome, err error) string {
	switch {
	case err == nil && o == Duplicate:
		return metrics.OutcomeDuplicate
	case err == nil:
		return metrics.OutcomeApplied
	case errors.Is(err, common.ErrAlreadyExists):
		return metrics.OutcomeDuplicate
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrMissingReference),
		errors.Is(err, common.ErrNotFound):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}

// required takes name/value pairs and reports the empty ones.
func required(what string, pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: missing %s", common.ErrValidation, what, strings.Join(missing, ", "))
	}
	return nil
}
