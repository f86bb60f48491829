package models

import "time"

// Action statuses accepted by UpdateActionStatus.
const (
	ActionOpen       = "open"
	ActionInProgress = "in_progress"
	ActionDone       = "done"
	ActionCancelled  = "cancelled"
)

// Severities accepted for a non-conformity; empty means unrated.
var Severities = map[string]bool{"": true, "low": true, "medium": true, "high": true, "critical": true}

// ActionStatuses is the set of valid corrective action statuses.
var ActionStatuses = map[string]bool{
	ActionOpen:       true,
	ActionInProgress: true,
	ActionDone:       true,
	ActionCancelled:  true,
}

// Origin records who sent a change and from which device.
type Origin struct {
	UserID   string
	DeviceID string
}

type Mission struct {
	ID          string
	Title       string
	Site        string
	Description string
	Inspector   string
	ScheduledAt time.Time
	Origin
}

type NonConformity struct {
	ID          string
	MissionID   string
	Title       string
	Description string
	Severity    string
	Findings    []string
	Origin
}

// CorrectiveAction holds the latest known status of an action. Updates
// carrying an older ChangedAt than the stored one are ignored.
type CorrectiveAction struct {
	ID              string
	NonConformityID string
	Status          string
	Comment         string
	ChangedAt       time.Time
	Origin
}

type MaintenanceLog struct {
	ID              string
	EquipmentID     string
	Title           string
	Notes           string
	DurationMinutes int
	PerformedAt     time.Time
	Origin
}

// Document is the metadata of an uploaded file; the bytes live in object
// storage under StorageKey.
type Document struct {
	ID          string
	OwnerID     string
	FileName    string
	ContentType string
	Size        int64
	SHA256      string
	StorageKey  string
	Uploaded    bool
	Origin
}
