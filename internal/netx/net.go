// Package netx contains the plain-HTTP leg of document uploads: a PUT to a
// presigned object-storage URL.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUploadTimeout bounds a single presigned upload when the caller's
// context has no deadline.
const DefaultUploadTimeout = 2 * time.Minute

var httpClient = &http.Client{Timeout: DefaultUploadTimeout}

// UploadPresigned PUTs body to a presigned URL. Any 2xx answer is success;
// anything else is returned as an error carrying the status and a body excerpt.
func UploadPresigned(ctx context.Context, url string, body []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
