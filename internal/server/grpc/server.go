// Package grpc serves the fieldsync.v1.FieldService API. Messages are
// google.protobuf.Struct values mapped to the internal/api types, so the
// service is registered with a hand-written grpc.ServiceDesc.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/fieldsync/internal/logging"
	"github.com/dmitrijs2005/fieldsync/internal/server/models"
	"github.com/dmitrijs2005/fieldsync/internal/server/services"
	"google.golang.org/grpc"
)

// Users is the authentication surface the server needs.
type Users interface {
	Login(ctx context.Context, userName, password string) (string, error)
	Authenticate(token string) (string, error)
}

// Fieldwork applies client operations.
type Fieldwork interface {
	CreateMission(ctx context.Context, r services.Request, m *models.Mission) (services.Outcome, error)
	CreateNonConformity(ctx context.Context, r services.Request, nc *models.NonConformity) (services.Outcome, error)
	UpdateActionStatus(ctx context.Context, r services.Request, a *models.CorrectiveAction) (services.Outcome, error)
	CreateMaintenanceLog(ctx context.Context, r services.Request, l *models.MaintenanceLog) (services.Outcome, error)
	RequestDocumentUpload(ctx context.Context, r services.Request, d *models.Document) (key, url string, err error)
	ConfirmDocumentUpload(ctx context.Context, r services.Request, documentID, key string) (services.Outcome, error)
}

type GRPCServer struct {
	address   string
	users     Users
	fieldwork Fieldwork
	logger    logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, us Users, fw Fieldwork) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		fieldwork: fw,
	}
}

// NewServer returns a grpc.Server with the interceptors and the field
// service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
	}, opts...)
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&serviceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
