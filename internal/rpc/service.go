package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name. It is also the name
// reported by the node's health service.
const ServiceName = "chainprofile.node.Node"

// Full method names, used by interceptors.
const (
	MethodChainInfo       = "/" + ServiceName + "/ChainInfo"
	MethodChallenge       = "/" + ServiceName + "/Challenge"
	MethodAuthenticate    = "/" + ServiceName + "/Authenticate"
	MethodGetAccount      = "/" + ServiceName + "/GetAccount"
	MethodSendTransaction = "/" + ServiceName + "/SendTransaction"
	MethodGetReceipt      = "/" + ServiceName + "/GetReceipt"
	MethodReadProfile     = "/" + ServiceName + "/ReadProfile"
)

// AccessTokenHeader is the metadata key carrying the session token.
const AccessTokenHeader = "access_token"

// NodeServer is implemented by the ledger node.
type NodeServer interface {
	ChainInfo(context.Context, *ChainInfoRequest) (*ChainInfoResponse, error)
	Challenge(context.Context, *ChallengeRequest) (*ChallengeResponse, error)
	Authenticate(context.Context, *AuthenticateRequest) (*AuthenticateResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error)
	SendTransaction(context.Context, *SendTransactionRequest) (*SendTransactionResponse, error)
	GetReceipt(context.Context, *GetReceiptRequest) (*GetReceiptResponse, error)
	ReadProfile(context.Context, *ReadProfileRequest) (*ReadProfileResponse, error)
}

// UnimplementedNodeServer answers every call with codes.Unimplemented.
type UnimplementedNodeServer struct{}

func (UnimplementedNodeServer) ChainInfo(context.Context, *ChainInfoRequest) (*ChainInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ChainInfo not implemented")
}
func (UnimplementedNodeServer) Challenge(context.Context, *ChallengeRequest) (*ChallengeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Challenge not implemented")
}
func (UnimplementedNodeServer) Authenticate(context.Context, *AuthenticateRequest) (*AuthenticateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Authenticate not implemented")
}
func (UnimplementedNodeServer) GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAccount not implemented")
}
func (UnimplementedNodeServer) SendTransaction(context.Context, *SendTransactionRequest) (*SendTransactionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SendTransaction not implemented")
}
func (UnimplementedNodeServer) GetReceipt(context.Context, *GetReceiptRequest) (*GetReceiptResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetReceipt not implemented")
}
func (UnimplementedNodeServer) ReadProfile(context.Context, *ReadProfileRequest) (*ReadProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReadProfile not implemented")
}

// RegisterNodeServer attaches srv to a gRPC server.
func RegisterNodeServer(s grpc.ServiceRegistrar, srv NodeServer) {
	s.RegisterService(&NodeServiceDesc, srv)
}

// unaryHandler adapts a typed NodeServer method to grpc.MethodDesc.
func unaryHandler[Req any, Resp any](fullMethod string, call func(NodeServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(NodeServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(NodeServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// NodeServiceDesc describes the node service for grpc.Server.
var NodeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NodeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ChainInfo", Handler: unaryHandler(MethodChainInfo, NodeServer.ChainInfo)},
		{MethodName: "Challenge", Handler: unaryHandler(MethodChallenge, NodeServer.Challenge)},
		{MethodName: "Authenticate", Handler: unaryHandler(MethodAuthenticate, NodeServer.Authenticate)},
		{MethodName: "GetAccount", Handler: unaryHandler(MethodGetAccount, NodeServer.GetAccount)},
		{MethodName: "SendTransaction", Handler: unaryHandler(MethodSendTransaction, NodeServer.SendTransaction)},
		{MethodName: "GetReceipt", Handler: unaryHandler(MethodGetReceipt, NodeServer.GetReceipt)},
		{MethodName: "ReadProfile", Handler: unaryHandler(MethodReadProfile, NodeServer.ReadProfile)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/rpc/service.go",
}

// NodeClient is the client side of the node service.
type NodeClient interface {
	ChainInfo(ctx context.Context, in *ChainInfoRequest, opts ...grpc.CallOption) (*ChainInfoResponse, error)
	Challenge(ctx context.Context, in *ChallengeRequest, opts ...grpc.CallOption) (*ChallengeResponse, error)
	Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error)
	GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error)
	SendTransaction(ctx context.Context, in *SendTransactionRequest, opts ...grpc.CallOption) (*SendTransactionResponse, error)
	GetReceipt(ctx context.Context, in *GetReceiptRequest, opts ...grpc.CallOption) (*GetReceiptResponse, error)
	ReadProfile(ctx context.Context, in *ReadProfileRequest, opts ...grpc.CallOption) (*ReadProfileResponse, error)
}

type nodeClient struct {
	cc grpc.ClientConnInterface
}

// NewNodeClient returns a NodeClient whose calls use the JSON codec.
func NewNodeClient(cc grpc.ClientConnInterface) NodeClient {
	return &nodeClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *nodeClient) ChainInfo(ctx context.Context, in *ChainInfoRequest, opts ...grpc.CallOption) (*ChainInfoResponse, error) {
	return invoke[ChainInfoResponse](ctx, c.cc, MethodChainInfo, in, opts)
}

func (c *nodeClient) Challenge(ctx context.Context, in *ChallengeRequest, opts ...grpc.CallOption) (*ChallengeResponse, error) {
	return invoke[ChallengeResponse](ctx, c.cc, MethodChallenge, in, opts)
}

func (c *nodeClient) Authenticate(ctx context.Context, in *AuthenticateRequest, opts ...grpc.CallOption) (*AuthenticateResponse, error) {
	return invoke[AuthenticateResponse](ctx, c.cc, MethodAuthenticate, in, opts)
}

func (c *nodeClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error) {
	return invoke[GetAccountResponse](ctx, c.cc, MethodGetAccount, in, opts)
}

func (c *nodeClient) SendTransaction(ctx context.Context, in *SendTransactionRequest, opts ...grpc.CallOption) (*SendTransactionResponse, error) {
	return invoke[SendTransactionResponse](ctx, c.cc, MethodSendTransaction, in, opts)
}

func (c *nodeClient) GetReceipt(ctx context.Context, in *GetReceiptRequest, opts ...grpc.CallOption) (*GetReceiptResponse, error) {
	return invoke[GetReceiptResponse](ctx, c.cc, MethodGetReceipt, in, opts)
}

func (c *nodeClient) ReadProfile(ctx context.Context, in *ReadProfileRequest, opts ...grpc.CallOption) (*ReadProfileResponse, error) {
	return invoke[ReadProfileResponse](ctx, c.cc, MethodReadProfile, in, opts)
}
