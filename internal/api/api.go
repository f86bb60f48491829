// Package api is the wire contract between the fieldsync client and server.
//
// The service is plain gRPC without generated stubs: every request and
// response is a google.protobuf.Struct (or Empty) whose fields mirror the Go
// message types declared here. Encode and Decode convert between the two via
// protojson, so both sides share one source of truth for field names.
package api

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "fieldsync.v1.FieldService"

// Full method names.
const (
	MethodPing                  = "/" + ServiceName + "/Ping"
	MethodLogin                 = "/" + ServiceName + "/Login"
	MethodCreateMission         = "/" + ServiceName + "/CreateMission"
	MethodCreateNonConformity   = "/" + ServiceName + "/CreateNonConformity"
	MethodUpdateActionStatus    = "/" + ServiceName + "/UpdateActionStatus"
	MethodCreateMaintenanceLog  = "/" + ServiceName + "/CreateMaintenanceLog"
	MethodRequestDocumentUpload = "/" + ServiceName + "/RequestDocumentUpload"
	MethodConfirmDocumentUpload = "/" + ServiceName + "/ConfirmDocumentUpload"
)

// StatusOK is the Ping status of a healthy server.
const StatusOK = "OK"

type PingResponse struct {
	Status string `json:"status"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type Mission struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Site        string    `json:"site"`
	Description string    `json:"description,omitempty"`
	Inspector   string    `json:"inspector,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type NonConformity struct {
	ID          string   `json:"id"`
	MissionID   string   `json:"mission_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Severity    string   `json:"severity,omitempty"`
	Findings    []string `json:"findings,omitempty"`
}

type ActionStatusUpdate struct {
	ActionID        string    `json:"action_id"`
	NonConformityID string    `json:"non_conformity_id,omitempty"`
	Status          string    `json:"status"`
	Comment         string    `json:"comment,omitempty"`
	ChangedAt       time.Time `json:"changed_at"`
}

type MaintenanceLog struct {
	ID              string    `json:"id"`
	EquipmentID     string    `json:"equipment_id"`
	Title           string    `json:"title"`
	Notes           string    `json:"notes,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	PerformedAt     time.Time `json:"performed_at"`
}

type DocumentUploadRequest struct {
	DocumentID  string `json:"document_id"`
	OwnerID     string `json:"owner_id,omitempty"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
	SHA256      string `json:"sha256"`
}

type DocumentUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type DocumentUploadConfirm struct {
	DocumentID string `json:"document_id"`
	Key        string `json:"key"`
}

// Encode converts a message into a protobuf Struct.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return s, nil
}

// Decode fills v from a protobuf Struct. A nil Struct decodes as an empty
// object.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}
