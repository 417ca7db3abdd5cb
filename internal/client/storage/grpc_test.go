package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/rentable/internal/client/client"
	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/netx"
	"github.com/dmitrijs2005/rentable/internal/rpc"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeConn struct {
	last *rpc.CreateUploadURLRequest
	url  string
	err  error
}

func (f *fakeConn) Invoke(_ context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	if method != rpc.StorageCreateUploadURL {
		return status.Error(codes.Unimplemented, method)
	}
	f.last = args.(*rpc.CreateUploadURLRequest)
	if f.err != nil {
		return f.err
	}
	raw, _ := json.Marshal(&rpc.CreateUploadURLResponse{URL: f.url})
	return json.Unmarshal(raw, reply)
}

func (f *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streams not supported")
}

func TestUpload_PutsToPresignedURL(t *testing.T) {
	var gotBody []byte
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	conn := &fakeConn{url: srv.URL + "/avatars/u1/profile.jpg?X-Amz-Signature=abc"}
	s := NewGRPCStore(conn, srv.Client(), common.AvatarsBucket, "https://cdn.example/storage/v1/object/public")

	err := s.Upload(context.Background(), common.ProfileImagePath("u1"), []byte{0xFF, 0xD8}, common.ProfileImageContentType, true)
	require.NoError(t, err)
	require.Equal(t, "avatars", conn.last.Bucket)
	require.Equal(t, "u1/profile.jpg", conn.last.Path)
	require.True(t, conn.last.Upsert)
	require.Equal(t, "image/jpeg", gotType)
	require.Equal(t, []byte{0xFF, 0xD8}, gotBody)
}

func TestUpload_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "SignatureDoesNotMatch", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewGRPCStore(&fakeConn{url: srv.URL}, srv.Client(), "avatars", "")
	err := s.Upload(context.Background(), "u1/profile.jpg", []byte("x"), "image/jpeg", true)
	require.ErrorIs(t, err, netx.ErrUploadRejected)
	require.NotErrorIs(t, err, client.ErrUnavailable)
}

func TestUpload_NetworkFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	deadURL := srv.URL
	srv.Close()

	s := NewGRPCStore(&fakeConn{url: deadURL}, nil, "avatars", "")
	err := s.Upload(context.Background(), "u1/profile.jpg", []byte("x"), "image/jpeg", true)
	require.ErrorIs(t, err, client.ErrUnavailable)

	s = NewGRPCStore(&fakeConn{err: status.Error(codes.Unavailable, "backend down")}, nil, "avatars", "")
	err = s.Upload(context.Background(), "u1/profile.jpg", []byte("x"), "image/jpeg", true)
	require.ErrorIs(t, err, client.ErrUnavailable)
}

func TestUpload_BackendRefusesPresign(t *testing.T) {
	s := NewGRPCStore(&fakeConn{err: status.Error(codes.AlreadyExists, "The resource already exists")}, nil, "avatars", "")
	err := s.Upload(context.Background(), "u1/profile.jpg", []byte("x"), "image/jpeg", false)
	require.True(t, client.IsCode(err, codes.AlreadyExists))
}

func TestPublicURL(t *testing.T) {
	s := NewGRPCStore(&fakeConn{}, nil, "avatars", "https://cdn.example/storage/v1/object/public/")
	u, err := s.PublicURL("u1/profile.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/storage/v1/object/public/avatars/u1/profile.jpg", u)

	_, err = NewGRPCStore(&fakeConn{}, nil, "avatars", "").PublicURL("u1/profile.jpg")
	require.ErrorIs(t, err, ErrNoPublicBase)
}
