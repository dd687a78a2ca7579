// Package storage uploads binary content to durable external object
// storage. Uploads are irreversible external effects and must always go
// through pkg/effectguard.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// MockBaseURL is the base of the deterministic URLs returned for
// guarded uploads under impersonation.
const MockBaseURL = "https://storage.mock.op-atlas.dev"

// UploadResult is the outcome of a durable upload.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Uploader writes objects to the storage gateway.
type Uploader struct {
	client  *http.Client
	baseURL string
	bucket  string
}

// NewUploader creates an uploader against the given gateway and bucket.
func NewUploader(baseURL, bucket string) *Uploader {
	return &Uploader{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: baseURL,
		bucket:  bucket,
	}
}

// Upload stores content under name and returns its durable URL.
func (u *Uploader) Upload(ctx context.Context, name string, content []byte, contentType string) (UploadResult, error) {
	key := u.bucket + "/" + name
	url := u.baseURL + "/" + key

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(content))
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return UploadResult{}, fmt.Errorf("storage gateway returned status %d", resp.StatusCode)
	}

	return UploadResult{URL: url, Key: key}, nil
}

// MockUploadResult builds the deterministic mock value handed to the
// effect guard for uploads performed under impersonation.
func MockUploadResult(name string) UploadResult {
	return UploadResult{
		URL: MockBaseURL + "/impersonation/" + name,
		Key: "impersonation/" + name,
	}
}
