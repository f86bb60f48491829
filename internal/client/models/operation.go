package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidOperation = errors.New("invalid operation")
)

// OperationKind is the closed tag stored in OutboxRecord.Type.
type OperationKind string

const (
	KindCreateMission        OperationKind = "CREATE_MISSION"
	KindCreateNonConformity  OperationKind = "CREATE_NC"
	KindUpdateActionStatus   OperationKind = "UPDATE_ACTION_STATUS"
	KindCreateMaintenanceLog OperationKind = "CREATE_MAINTENANCE_LOG"
	KindUploadDocument       OperationKind = "UPLOAD_DOCUMENT"
)

// Operation is a queued remote mutation. The concrete types below are the
// only implementations; executors switch over them exhaustively.
type Operation interface {
	Kind() OperationKind
	Validate() error
}

type CreateMission struct {
	MissionID   string    `json:"mission_id"`
	Title       string    `json:"title"`
	Site        string    `json:"site"`
	Description string    `json:"description,omitempty"`
	Inspector   string    `json:"inspector,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (CreateMission) Kind() OperationKind { return KindCreateMission }

func (o CreateMission) Validate() error {
	return requireFields(o.Kind(), field{"mission_id", o.MissionID}, field{"title", o.Title}, field{"site", o.Site})
}

type CreateNonConformity struct {
	NonConformityID string   `json:"non_conformity_id"`
	MissionID       string   `json:"mission_id,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Severity        string   `json:"severity,omitempty"`
	Findings        []string `json:"findings,omitempty"`
}

func (CreateNonConformity) Kind() OperationKind { return KindCreateNonConformity }

func (o CreateNonConformity) Validate() error {
	if err := requireFields(o.Kind(), field{"non_conformity_id", o.NonConformityID}, field{"title", o.Title}); err != nil {
		return err
	}
	switch o.Severity {
	case "", "low", "medium", "high", "critical":
		return nil
	default:
		return fmt.Errorf("%w: %s: unknown severity %q", ErrInvalidOperation, o.Kind(), o.Severity)
	}
}

// Corrective action statuses accepted by UpdateActionStatus.
const (
	ActionOpen       = "open"
	ActionInProgress = "in_progress"
	ActionDone       = "done"
	ActionCancelled  = "cancelled"
)

type UpdateActionStatus struct {
	ActionID        string    `json:"action_id"`
	NonConformityID string    `json:"non_conformity_id,omitempty"`
	Status          string    `json:"status"`
	Comment         string    `json:"comment,omitempty"`
	ChangedAt       time.Time `json:"changed_at"`
}

func (UpdateActionStatus) Kind() OperationKind { return KindUpdateActionStatus }

func (o UpdateActionStatus) Validate() error {
	if err := requireFields(o.Kind(), field{"action_id", o.ActionID}, field{"status", o.Status}); err != nil {
		return err
	}
	switch o.Status {
	case ActionOpen, ActionInProgress, ActionDone, ActionCancelled:
		return nil
	default:
		return fmt.Errorf("%w: %s: unknown status %q", ErrInvalidOperation, o.Kind(), o.Status)
	}
}

type CreateMaintenanceLog struct {
	LogID           string    `json:"log_id"`
	EquipmentID     string    `json:"equipment_id"`
	Title           string    `json:"title"`
	Notes           string    `json:"notes,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	PerformedAt     time.Time `json:"performed_at"`
}

func (CreateMaintenanceLog) Kind() OperationKind { return KindCreateMaintenanceLog }

func (o CreateMaintenanceLog) Validate() error {
	if err := requireFields(o.Kind(), field{"log_id", o.LogID}, field{"equipment_id", o.EquipmentID}, field{"title", o.Title}); err != nil {
		return err
	}
	if o.DurationMinutes < 0 {
		return fmt.Errorf("%w: %s: negative duration", ErrInvalidOperation, o.Kind())
	}
	return nil
}

// UploadDocument refers to a snapshot copy of the file in the attachments
// directory, never to the user's original path.
type UploadDocument struct {
	DocumentID  string `json:"document_id"`
	OwnerID     string `json:"owner_id,omitempty"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	LocalPath   string `json:"local_path"`
	Size        int64  `json:"size"`
	SHA256      string `json:"sha256"`
}

func (UploadDocument) Kind() OperationKind { return KindUploadDocument }

func (o UploadDocument) Validate() error {
	return requireFields(o.Kind(),
		field{"document_id", o.DocumentID}, field{"file_name", o.FileName},
		field{"local_path", o.LocalPath}, field{"sha256", o.SHA256})
}

// EncodeOperation serialises op into the payload stored in the outbox.
// The result is an independent copy: later changes to op (or to slices it
// references) do not affect it.
func EncodeOperation(op Operation) (OperationKind, json.RawMessage, error) {
	if op == nil {
		return "", nil, fmt.Errorf("%w: nil operation", ErrInvalidOperation)
	}
	if v := reflect.ValueOf(op); v.Kind() == reflect.Pointer && v.IsNil() {
		return "", nil, fmt.Errorf("%w: nil %T", ErrInvalidOperation, op)
	}
	b, err := json.Marshal(op)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", op.Kind(), err)
	}
	return op.Kind(), b, nil
}

// DecodeOperation rebuilds the typed operation for a stored record.
func DecodeOperation(kind OperationKind, payload []byte) (Operation, error) {
	switch kind {
	case KindCreateMission:
		return decode[CreateMission](kind, payload)
	case KindCreateNonConformity:
		return decode[CreateNonConformity](kind, payload)
	case KindUpdateActionStatus:
		return decode[UpdateActionStatus](kind, payload)
	case KindCreateMaintenanceLog:
		return decode[CreateMaintenanceLog](kind, payload)
	case KindUploadDocument:
		return decode[UploadDocument](kind, payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, kind)
	}
}

func decode[T Operation](kind OperationKind, payload []byte) (Operation, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return v, nil
}

type field struct {
	name  string
	value string
}

func requireFields(kind OperationKind, fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: missing %s", ErrInvalidOperation, kind, strings.Join(missing, ", "))
	}
	return nil
}
