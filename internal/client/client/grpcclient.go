package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/fieldsync/internal/api"
	"github.com/dmitrijs2005/fieldsync/internal/client/models"
	"github.com/dmitrijs2005/fieldsync/internal/common"
	"github.com/dmitrijs2005/fieldsync/internal/netx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// test seams
var (
	readFile        = os.ReadFile
	uploadPresigned = netx.UploadPresigned
)

type GRPCClient struct {
	conn     grpc.ClientConnInterface
	closeFn  func() error
	deviceID string

	mu          sync.RWMutex
	accessToken string
}

// NewGRPCClient creates a lazily-connecting client for endpointURL.
// Extra dial options are appended after the defaults.
func NewGRPCClient(endpointURL, deviceID string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{deviceID: deviceID}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.closeFn = conn.Close
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	reply := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, api.MethodPing, &emptypb.Empty{}, reply); err != nil {
		return s.mapError(err)
	}

	var resp api.PingResponse
	if err := api.Decode(reply, &resp); err != nil {
		return err
	}
	if resp.Status != api.StatusOK {
		return ErrUnavailable
	}
	return nil
}

// Login exchanges credentials for an access token, keeps it for later calls
// and returns it so the caller can persist it.
func (s *GRPCClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp api.LoginResponse
	if err := s.invoke(ctx, api.MethodLogin, api.LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	s.SetAccessToken(resp.AccessToken)
	return resp.AccessToken, nil
}

// Execute sends op to the server. An operation the server has already
// applied under the same id counts as success.
func (s *GRPCClient) Execute(ctx context.Context, id string, op models.Operation) error {
	ctx = metadata.AppendToOutgoingContext(ctx,
		common.IdempotencyKeyHeaderName, id,
		common.DeviceIDHeaderName, s.deviceID,
	)

	switch o := op.(type) {
	case models.CreateMission:
		return s.invoke(ctx, api.MethodCreateMission, api.Mission{
			ID:          o.MissionID,
			Title:       o.Title,
			Site:        o.Site,
			Description: o.Description,
			Inspector:   o.Inspector,
			ScheduledAt: o.ScheduledAt,
		}, nil)
	case models.CreateNonConformity:
		return s.invoke(ctx, api.MethodCreateNonConformity, api.NonConformity{
			ID:          o.NonConformityID,
			MissionID:   o.MissionID,
			Title:       o.Title,
			Description: o.Description,
			Severity:    o.Severity,
			Findings:    o.Findings,
		}, nil)
	case models.UpdateActionStatus:
		return s.invoke(ctx, api.MethodUpdateActionStatus, api.ActionStatusUpdate{
			ActionID:        o.ActionID,
			NonConformityID: o.NonConformityID,
			Status:          o.Status,
			Comment:         o.Comment,
			ChangedAt:       o.ChangedAt,
		}, nil)
	case models.CreateMaintenanceLog:
		return s.invoke(ctx, api.MethodCreateMaintenanceLog, api.MaintenanceLog{
			ID:              o.LogID,
			EquipmentID:     o.EquipmentID,
			Title:           o.Title,
			Notes:           o.Notes,
			DurationMinutes: o.DurationMinutes,
			PerformedAt:     o.PerformedAt,
		}, nil)
	case models.UploadDocument:
		return s.uploadDocument(ctx, o)
	default:
		return fmt.Errorf("%w: %T", models.ErrUnknownOperation, op)
	}
}

// uploadDocument asks for a presigned URL, PUTs the snapshot file and
// confirms the upload. Each step is safe to repeat.
func (s *GRPCClient) uploadDocument(ctx context.Context, o models.UploadDocument) error {
	body, err := readFile(o.LocalPath)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}
	sum := sha256.Sum256(body)
	if int64(len(body)) != o.Size || hex.EncodeToString(sum[:]) != o.SHA256 {
		return fmt.Errorf("%w: %s", ErrCorruptFile, o.LocalPath)
	}

	var target api.DocumentUploadResponse
	err = s.invoke(ctx, api.MethodRequestDocumentUpload, api.DocumentUploadRequest{
		DocumentID:  o.DocumentID,
		OwnerID:     o.OwnerID,
		FileName:    o.FileName,
		ContentType: o.ContentType,
		Size:        o.Size,
		SHA256:      o.SHA256,
	}, &target)
	if err != nil {
		return err
	}

	if err := uploadPresigned(ctx, target.URL, body, o.ContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return s.invoke(ctx, api.MethodConfirmDocumentUpload, api.DocumentUploadConfirm{
		DocumentID: o.DocumentID,
		Key:        target.Key,
	}, nil)
}

// invoke encodes req, performs the unary call and decodes the reply into
// resp when resp is not nil. AlreadyExists means the operation was applied
// before; it counts as success only for calls that expect no reply.
func (s *GRPCClient) invoke(ctx context.Context, method string, req any, resp any) error {
	in, err := api.Encode(req)
	if err != nil {
		return err
	}

	reply := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, method, in, reply); err != nil {
		if resp == nil && status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return s.mapError(err)
	}
	if resp == nil {
		return nil
	}
	return api.Decode(reply, resp)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound, codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
