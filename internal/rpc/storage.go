package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const StorageServiceName = "rentable.storage.v1.Storage"

const StorageCreateUploadURL = "/" + StorageServiceName + "/CreateUploadURL"

// StorageServer hands out presigned upload URLs for per-user object paths.
type StorageServer interface {
	CreateUploadURL(context.Context, *CreateUploadURLRequest) (*CreateUploadURLResponse, error)
}

var StorageServiceDesc = grpc.ServiceDesc{
	ServiceName: StorageServiceName,
	HandlerType: (*StorageServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(StorageServiceName, "CreateUploadURL", StorageServer.CreateUploadURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rentable/storage.v1",
}

func RegisterStorageServer(s grpc.ServiceRegistrar, srv StorageServer) {
	s.RegisterService(&StorageServiceDesc, srv)
}

type StorageClient interface {
	CreateUploadURL(ctx context.Context, in *CreateUploadURLRequest, opts ...grpc.CallOption) (*CreateUploadURLResponse, error)
}

type storageClient struct {
	cc grpc.ClientConnInterface
}

func NewStorageClient(cc grpc.ClientConnInterface) StorageClient {
	return &storageClient{cc: cc}
}

func (c *storageClient) CreateUploadURL(ctx context.Context, in *CreateUploadURLRequest, opts ...grpc.CallOption) (*CreateUploadURLResponse, error) {
	return invoke[CreateUploadURLResponse](ctx, c.cc, StorageCreateUploadURL, in, opts)
}
