package grpc

import (
	"context"

	"github.com/dmitrijs2005/fieldsync/internal/api"
	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/server/models"
	"github.com/dmitrijs2005/fieldsync/internal/server/services"
	"google.golang.org/grpc/metadata"
)

func (s *GRPCServer) Ping(ctx context.Context) (*api.PingResponse, error) {
	return &api.PingResponse{Status: api.StatusOK}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	token, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info(ctx, "Logged in", "username", req.Username)
	return &api.LoginResponse{AccessToken: token}, nil
}

func (s *GRPCServer) CreateMission(ctx context.Context, req api.Mission) (any, error) {
	_, err := s.fieldwork.CreateMission(ctx, requestFrom(ctx), &models.Mission{
		ID:          req.ID,
		Title:       req.Title,
		Site:        req.Site,
		Description: req.Description,
		Inspector:   req.Inspector,
		ScheduledAt: req.ScheduledAt,
	})
	return nil, toStatus(err)
}

func (s *GRPCServer) CreateNonConformity(ctx context.Context, req api.NonConformity) (any, error) {
	_, err := s.fieldwork.CreateNonConformity(ctx, requestFrom(ctx), &models.NonConformity{
		ID:          req.ID,
		MissionID:   req.MissionID,
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Findings:    req.Findings,
	})
	return nil, toStatus(err)
}

func (s *GRPCServer) UpdateActionStatus(ctx context.Context, req api.ActionStatusUpdate) (any, error) {
	_, err := s.fieldwork.UpdateActionStatus(ctx, requestFrom(ctx), &models.CorrectiveAction{
		ID:              req.ActionID,
		NonConformityID: req.NonConformityID,
		Status:          req.Status,
		Comment:         req.Comment,
		ChangedAt:       req.ChangedAt,
	})
	return nil, toStatus(err)
}

func (s *GRPCServer) CreateMaintenanceLog(ctx context.Context, req api.MaintenanceLog) (any, error) {
	_, err := s.fieldwork.CreateMaintenanceLog(ctx, requestFrom(ctx), &models.MaintenanceLog{
		ID:              req.ID,
		EquipmentID:     req.EquipmentID,
		Title:           req.Title,
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
		PerformedAt:     req.PerformedAt,
	})
	return nil, toStatus(err)
}

func (s *GRPCServer) RequestDocumentUpload(ctx context.Context, req api.DocumentUploadRequest) (*api.DocumentUploadResponse, error) {
	key, url, err := s.fieldwork.RequestDocumentUpload(ctx, requestFrom(ctx), &models.Document{
		ID:          req.DocumentID,
		OwnerID:     req.OwnerID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		SHA256:      req.SHA256,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.DocumentUploadResponse{Key: key, URL: url}, nil
}

func (s *GRPCServer) ConfirmDocumentUpload(ctx context.Context, req api.DocumentUploadConfirm) (any, error) {
	_, err := s.fieldwork.ConfirmDocumentUpload(ctx, requestFrom(ctx), req.DocumentID, req.Key)
	return nil, toStatus(err)
}

// requestFrom collects the idempotency key, device id and authenticated user
// of the current call.
func requestFrom(ctx context.Context) services.Request {
	r := services.Request{}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		r.Key = first(md, common.IdempotencyKeyHeaderName)
		r.DeviceID = first(md, common.DeviceIDHeaderName)
	}
	r.UserID, _ = ctx.Value(userIDKey).(string)
	return r
}

func first(md metadata.MD, key string) string {
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}
