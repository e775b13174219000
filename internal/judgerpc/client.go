package judgerpc

import (
	"context"

	"google.golang.org/grpc"
)

// JudgeServiceClient is the client-side contract for judgecore's hand-wired
// gRPC service, standing in for what protoc-gen-go-grpc would have
// generated from a judgerpc.proto.
type JudgeServiceClient interface {
	RunJudge(ctx context.Context, req *JudgeRequest, opts ...grpc.CallOption) (*JudgeResponse, error)
	StreamDiagnostics(ctx context.Context, req *JudgeRequest, opts ...grpc.CallOption) (JudgeService_StreamDiagnosticsClient, error)
}

// JudgeService_StreamDiagnosticsClient is the client-side stream handle for
// StreamDiagnostics.
type JudgeService_StreamDiagnosticsClient interface {
	Recv() (*DiagnosticsChunk, error)
	grpc.ClientStream
}

type judgeServiceClient struct {
	cc *grpc.ClientConn
}

// NewJudgeServiceClient returns a JudgeServiceClient dialed against cc. Each
// call adds grpc.CallContentSubtype(codecName) itself (see codec.go), since
// the server speaks the JSON wire format registered there, not protobuf
// binary.
func NewJudgeServiceClient(cc *grpc.ClientConn) JudgeServiceClient {
	return &judgeServiceClient{cc: cc}
}

func (c *judgeServiceClient) RunJudge(ctx context.Context, req *JudgeRequest, opts ...grpc.CallOption) (*JudgeResponse, error) {
	out := new(JudgeResponse)
	opts = append(opts, grpc.CallContentSubtype(codecName))
	if err := c.cc.Invoke(ctx, "/judgecore.judgerpc.JudgeService/RunJudge", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *judgeServiceClient) StreamDiagnostics(ctx context.Context, req *JudgeRequest, opts ...grpc.CallOption) (JudgeService_StreamDiagnosticsClient, error) {
	opts = append(opts, grpc.CallContentSubtype(codecName))
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/judgecore.judgerpc.JudgeService/StreamDiagnostics", opts...)
	if err != nil {
		return nil, err
	}
	x := &judgeServiceStreamDiagnosticsClient{stream}
	if err := x.ClientStream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type judgeServiceStreamDiagnosticsClient struct {
	grpc.ClientStream
}

func (x *judgeServiceStreamDiagnosticsClient) Recv() (*DiagnosticsChunk, error) {
	m := new(DiagnosticsChunk)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
