// Package netx holds small HTTP helpers used by the client.
package netx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// ErrUploadRejected is returned when the storage endpoint answers a
// presigned upload with a non-2xx status.
var ErrUploadRejected = errors.New("upload rejected")

// UploadToPresignedURL PUTs data to a presigned object-store URL.
// The content type must match the one the URL was signed for.
func UploadToPresignedURL(ctx context.Context, client *http.Client, url, contentType string, data []byte) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s; body: %s", ErrUploadRejected, resp.Status, string(b))
	}
	return nil
}

// IsNetworkError reports whether err came from the network layer
// (dial, DNS, reset, timeout) rather than from a server response.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
