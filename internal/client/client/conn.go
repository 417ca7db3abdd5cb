package client

import (
	"github.com/dmitrijs2005/rentable/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial creates a lazy gRPC connection to addr. No I/O happens until the
// first call, so an unreachable backend surfaces as ErrUnavailable there.
func Dial(addr string, interceptors ...grpc.UnaryClientInterceptor) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(rpc.CallOptions()...),
		grpc.WithChainUnaryInterceptor(interceptors...),
	)
}
