package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ProfilesServiceName = "rentable.rest.v1.Profiles"

const (
	ProfilesSelect = "/" + ProfilesServiceName + "/Select"
	ProfilesInsert = "/" + ProfilesServiceName + "/Insert"
	ProfilesUpdate = "/" + ProfilesServiceName + "/Update"
)

// ProfilesServer exposes the profiles table with row-level checks.
type ProfilesServer interface {
	Select(context.Context, *SelectProfilesRequest) (*SelectProfilesResponse, error)
	Insert(context.Context, *InsertProfileRequest) (*Empty, error)
	Update(context.Context, *UpdateProfileRequest) (*UpdateProfileResponse, error)
}

var ProfilesServiceDesc = grpc.ServiceDesc{
	ServiceName: ProfilesServiceName,
	HandlerType: (*ProfilesServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ProfilesServiceName, "Select", ProfilesServer.Select),
		unary(ProfilesServiceName, "Insert", ProfilesServer.Insert),
		unary(ProfilesServiceName, "Update", ProfilesServer.Update),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rentable/rest.v1",
}

func RegisterProfilesServer(s grpc.ServiceRegistrar, srv ProfilesServer) {
	s.RegisterService(&ProfilesServiceDesc, srv)
}

type ProfilesClient interface {
	Select(ctx context.Context, in *SelectProfilesRequest, opts ...grpc.CallOption) (*SelectProfilesResponse, error)
	Insert(ctx context.Context, in *InsertProfileRequest, opts ...grpc.CallOption) (*Empty, error)
	Update(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UpdateProfileResponse, error)
}

type profilesClient struct {
	cc grpc.ClientConnInterface
}

func NewProfilesClient(cc grpc.ClientConnInterface) ProfilesClient {
	return &profilesClient{cc: cc}
}

func (c *profilesClient) Select(ctx context.Context, in *SelectProfilesRequest, opts ...grpc.CallOption) (*SelectProfilesResponse, error) {
	return invoke[SelectProfilesResponse](ctx, c.cc, ProfilesSelect, in, opts)
}

func (c *profilesClient) Insert(ctx context.Context, in *InsertProfileRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, ProfilesInsert, in, opts)
}

func (c *profilesClient) Update(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*UpdateProfileResponse, error) {
	return invoke[UpdateProfileResponse](ctx, c.cc, ProfilesUpdate, in, opts)
}
