package models

import (
	"encoding/json"
	"time"
)

// WorkItemKind classifies a local domain entity.
type WorkItemKind string

const (
	WorkItemMission        WorkItemKind = "mission"
	WorkItemNonConformity  WorkItemKind = "non_conformity"
	WorkItemAction         WorkItemKind = "action"
	WorkItemMaintenanceLog WorkItemKind = "maintenance_log"
	WorkItemDocument       WorkItemKind = "document"
)

// WorkItem is the local copy of a mission, non-conformity, corrective action,
// maintenance log or document. Body holds the kind-specific JSON.
type WorkItem struct {
	ID        string
	Kind      WorkItemKind
	Title     string
	Body      json.RawMessage
	UpdatedAt time.Time
	Deleted   bool
}
