package cli

import (
	"context"

	"google.golang.org/grpc"
)

// Server is implemented by the daemon side (zebrad) to answer CLI RPCs.
type Server interface {
	Exec(ctx context.Context, req *ExecRequest) (*ExecResponse, error)
	Show(req *ShowRequest, stream ShowStream) error
	Apply(stream ApplyStream) error
	Clear(ctx context.Context, req *ClearRequest) (*ClearResult, error)
}

// ShowStream is the server-streaming handle Show uses to push chunks.
type ShowStream interface {
	Send(*ShowChunk) error
}

// ApplyStream is the client-streaming handle Apply uses to receive
// lines and return the single aggregated result.
type ApplyStream interface {
	Recv() (*ApplyLine, error)
	SendAndClose(*ApplyResult) error
}

const serviceName = "zebra.cli.Service"

// ServiceDesc is hand-registered rather than protoc-generated: this
// package owns the message shapes and their grpc wiring directly, the
// same pattern the goplane-style Dataplane used for grpc.NewServer/
// grpc.DialContext but without needing a .proto build step for four
// internal RPCs.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Exec", Handler: execHandler},
		{MethodName: "Clear", Handler: clearHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Show", Handler: showHandler, ServerStreams: true},
		{StreamName: "Apply", Handler: applyHandler, ClientStreams: true},
	},
}

func execHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(ExecRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).Exec(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName + "/Exec"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Server).Exec(ctx, req.(*ExecRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func clearHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	req := new(ClearRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).Clear(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName + "/Clear"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(Server).Clear(ctx, req.(*ClearRequest))
	}
	return interceptor(ctx, req, info, handler)
}

type showServerStream struct {
	grpc.ServerStream
}

func (s *showServerStream) Send(chunk *ShowChunk) error {
	return s.ServerStream.SendMsg(chunk)
}

func showHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(ShowRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(Server).Show(req, &showServerStream{stream})
}

type applyServerStream struct {
	grpc.ServerStream
}

func (s *applyServerStream) Recv() (*ApplyLine, error) {
	line := new(ApplyLine)
	if err := s.ServerStream.RecvMsg(line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *applyServerStream) SendAndClose(result *ApplyResult) error {
	return s.ServerStream.SendMsg(result)
}

func applyHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(Server).Apply(&applyServerStream{stream})
}

// RegisterServer wires srv into grpc server s the way a protoc-generated
// RegisterXServer function would.
func RegisterServer(s *grpc.Server, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client is a thin hand-written stub mirroring what protoc-gen-go would
// produce for this ServiceDesc, calling straight through
// grpc.ClientConn.Invoke/NewStream with the gob codec forced so no
// .proto-generated message types are required on either side.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient wraps an already-dialed connection (see cmd/zebra-cli for
// the grpc.DialContext call this expects, matching the goplane example's
// NewClient pattern).
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Exec(ctx context.Context, req *ExecRequest) (*ExecResponse, error) {
	resp := new(ExecResponse)
	err := c.conn.Invoke(ctx, "/"+serviceName+"/Exec", req, resp, grpc.ForceCodec(gobCodec{}))
	return resp, err
}

func (c *Client) Clear(ctx context.Context, req *ClearRequest) (*ClearResult, error) {
	resp := new(ClearResult)
	err := c.conn.Invoke(ctx, "/"+serviceName+"/Clear", req, resp, grpc.ForceCodec(gobCodec{}))
	return resp, err
}

// Show opens the server-streaming call and returns a receive-only
// client stream the caller can repeatedly Recv from until io.EOF.
func (c *Client) Show(ctx context.Context, req *ShowRequest) (ShowClientStream, error) {
	desc := &grpc.StreamDesc{StreamName: "Show", ServerStreams: true}
	stream, err := c.conn.NewStream(ctx, desc, "/"+serviceName+"/Show", grpc.ForceCodec(gobCodec{}))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &showClientStream{stream}, nil
}

// ShowClientStream is the client side of Show's server stream.
type ShowClientStream interface {
	Recv() (*ShowChunk, error)
}

type showClientStream struct {
	grpc.ClientStream
}

func (s *showClientStream) Recv() (*ShowChunk, error) {
	chunk := new(ShowChunk)
	if err := s.ClientStream.RecvMsg(chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

// Apply opens the client-streaming call; the caller Sends each
// ApplyLine then calls CloseAndRecv for the aggregated ApplyResult.
func (c *Client) Apply(ctx context.Context) (ApplyClientStream, error) {
	desc := &grpc.StreamDesc{StreamName: "Apply", ClientStreams: true}
	stream, err := c.conn.NewStream(ctx, desc, "/"+serviceName+"/Apply", grpc.ForceCodec(gobCodec{}))
	if err != nil {
		return nil, err
	}
	return &applyClientStream{stream}, nil
}

// ApplyClientStream is the client side of Apply's client stream.
type ApplyClientStream interface {
	Send(*ApplyLine) error
	CloseAndRecv() (*ApplyResult, error)
}

type applyClientStream struct {
	grpc.ClientStream
}

func (s *applyClientStream) Send(line *ApplyLine) error {
	return s.ClientStream.SendMsg(line)
}

func (s *applyClientStream) CloseAndRecv() (*ApplyResult, error) {
	if err := s.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	result := new(ApplyResult)
	if err := s.ClientStream.RecvMsg(result); err != nil {
		return nil, err
	}
	return result, nil
}
