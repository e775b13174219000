package judgerpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// JudgeServiceServer is the server-side contract for judgecore's hand-wired
// gRPC service; ServiceDesc below dispatches to an implementation of it.
type JudgeServiceServer interface {
	RunJudge(context.Context, *JudgeRequest) (*JudgeResponse, error)
	StreamDiagnostics(*JudgeRequest, JudgeService_StreamDiagnosticsServer) error
}

// JudgeService_StreamDiagnosticsServer is the server-side stream handle for
// StreamDiagnostics.
type JudgeService_StreamDiagnosticsServer interface {
	Send(*DiagnosticsChunk) error
	grpc.ServerStream
}

type judgeServiceStreamDiagnosticsServer struct{ grpc.ServerStream }

func (x *judgeServiceStreamDiagnosticsServer) Send(m *DiagnosticsChunk) error {
	return x.ServerStream.SendMsg(m)
}

// ServiceDesc is registered with a *grpc.Server in place of a
// protoc-generated _ServiceDesc, since no .proto file was available to
// generate one from; see codec.go for the accompanying wire format.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "judgecore.judgerpc.JudgeService",
	HandlerType: (*JudgeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunJudge", Handler: runJudgeHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamDiagnostics", Handler: streamDiagnosticsHandler, ServerStreams: true},
	},
	Metadata: "judgerpc.proto",
}

func runJudgeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(JudgeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(JudgeServiceServer).RunJudge(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/judgecore.judgerpc.JudgeService/RunJudge"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(JudgeServiceServer).RunJudge(ctx, req.(*JudgeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func streamDiagnosticsHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(JudgeRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(JudgeServiceServer).StreamDiagnostics(m, &judgeServiceStreamDiagnosticsServer{stream})
}

// errSubmissionIDRequired mirrors the "job ID required" validation the
// teacher's GetJob handler performs, applied to submission IDs instead.
var errSubmissionIDRequired = status.Error(codes.InvalidArgument, "submission ID required")
