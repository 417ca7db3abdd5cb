package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/rentable/internal/client/client"
	"github.com/dmitrijs2005/rentable/internal/netx"
	"github.com/dmitrijs2005/rentable/internal/rpc"
	"google.golang.org/grpc"
)

var ErrNoPublicBase = errors.New("public url base is not configured")

// GRPCStore asks the backend for a presigned PUT URL and uploads the
// bytes directly to the object store.
type GRPCStore struct {
	client     rpc.StorageClient
	httpClient *http.Client
	bucket     string
	publicBase string
}

// NewGRPCStore binds a store to bucket. publicBase is the root under which
// objects are readable as {publicBase}/{bucket}/{path}.
func NewGRPCStore(cc grpc.ClientConnInterface, httpClient *http.Client, bucket, publicBase string) *GRPCStore {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GRPCStore{
		client:     rpc.NewStorageClient(cc),
		httpClient: httpClient,
		bucket:     bucket,
		publicBase: publicBase,
	}
}

func (s *GRPCStore) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error {
	resp, err := s.client.CreateUploadURL(ctx, &rpc.CreateUploadURLRequest{
		Bucket:      s.bucket,
		Path:        path,
		ContentType: contentType,
		Upsert:      upsert,
	})
	if err != nil {
		return client.MapError(err)
	}

	if err := netx.UploadToPresignedURL(ctx, s.httpClient, resp.URL, contentType, data); err != nil {
		if netx.IsNetworkError(err) {
			return fmt.Errorf("%w: %v", client.ErrUnavailable, err)
		}
		return err
	}
	return nil
}

func (s *GRPCStore) PublicURL(path string) (string, error) {
	if s.publicBase == "" {
		return "", ErrNoPublicBase
	}
	return url.JoinPath(s.publicBase, s.bucket, strings.TrimPrefix(path, "/"))
}
