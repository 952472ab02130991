// Package ipfs pins exported artifacts to decentralized storage and hands
// back gateway URLs the editor can use as media sources.
package ipfs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"
)

type UploadResult struct {
	CID string `json:"cid"`
	URL string `json:"url"`
}

type Uploader interface {
	Upload(ctx context.Context, payload []byte, filename string) (UploadResult, error)
}

// MockUploader derives a stable content id from the payload so repeated
// uploads of the same bytes resolve to the same address, like the real
// network would.
type MockUploader struct {
	// Latency per upload; zero means immediate.
	Latency time.Duration
}

func NewMockUploader() *MockUploader {
	return &MockUploader{Latency: 300 * time.Millisecond}
}

func (u *MockUploader) Upload(ctx context.Context, payload []byte, filename string) (UploadResult, error) {
	if len(payload) == 0 {
		return UploadResult{}, fmt.Errorf("empty payload")
	}
	if filename == "" {
		filename = "file"
	}
	if u.Latency > 0 {
		timer := time.NewTimer(u.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return UploadResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	sum := sha256.Sum256(payload)
	cid := "bafy" + hex.EncodeToString(sum[:16])
	return UploadResult{
		CID: cid,
		URL: fmt.Sprintf("https://%s.ipfs.dweb.link/%s", cid, url.PathEscape(filename)),
	}, nil
}
