package grpc

import (
	"context"

	"github.com/dmitrijs2005/fieldsync/internal/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// fieldServiceServer is the handler type checked by RegisterService.
type fieldServiceServer interface {
	Ping(ctx context.Context) (*api.PingResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	CreateMission(ctx context.Context, req api.Mission) (any, error)
	CreateNonConformity(ctx context.Context, req api.NonConformity) (any, error)
	UpdateActionStatus(ctx context.Context, req api.ActionStatusUpdate) (any, error)
	CreateMaintenanceLog(ctx context.Context, req api.MaintenanceLog) (any, error)
	RequestDocumentUpload(ctx context.Context, req api.DocumentUploadRequest) (*api.DocumentUploadResponse, error)
	ConfirmDocumentUpload(ctx context.Context, req api.DocumentUploadConfirm) (any, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*fieldServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "Login", Handler: handler(api.MethodLogin, fieldServiceServer.Login)},
		{MethodName: "CreateMission", Handler: handler(api.MethodCreateMission, fieldServiceServer.CreateMission)},
		{MethodName: "CreateNonConformity", Handler: handler(api.MethodCreateNonConformity, fieldServiceServer.CreateNonConformity)},
		{MethodName: "UpdateActionStatus", Handler: handler(api.MethodUpdateActionStatus, fieldServiceServer.UpdateActionStatus)},
		{MethodName: "CreateMaintenanceLog", Handler: handler(api.MethodCreateMaintenanceLog, fieldServiceServer.CreateMaintenanceLog)},
		{MethodName: "RequestDocumentUpload", Handler: handler(api.MethodRequestDocumentUpload, fieldServiceServer.RequestDocumentUpload)},
		{MethodName: "ConfirmDocumentUpload", Handler: handler(api.MethodConfirmDocumentUpload, fieldServiceServer.ConfirmDocumentUpload)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fieldsync/v1/field.proto",
}

type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

// handler adapts a typed method to the Struct wire format: the request is
// decoded into Req and the result, if any, is encoded back into a Struct.
func handler[Req, Resp any](fullMethod string, call func(fieldServiceServer, context.Context, Req) (Resp, error)) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		run := func(ctx context.Context, req any) (any, error) {
			var typed Req
			if err := api.Decode(req.(*structpb.Struct), &typed); err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			resp, err := call(srv.(fieldServiceServer), ctx, typed)
			if err != nil {
				return nil, err
			}
			return encodeReply(resp)
		}

		if interceptor == nil {
			return run(ctx, in)
		}
		return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, run)
	}
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	run := func(ctx context.Context, _ any) (any, error) {
		resp, err := srv.(fieldServiceServer).Ping(ctx)
		if err != nil {
			return nil, err
		}
		return encodeReply(resp)
	}

	if interceptor == nil {
		return run(ctx, in)
	}
	return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: api.MethodPing}, run)
}

func encodeReply(resp any) (*structpb.Struct, error) {
	if resp == nil {
		return &structpb.Struct{}, nil
	}
	out, err := api.Encode(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode reply")
	}
	return out, nil
}
