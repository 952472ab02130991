// Package render turns a composition into an encoded video artifact. The
// mock exporter produces a placeholder MP4 so the export flow is exercisable
// end to end without an encoder toolchain.
package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"vibeforge/server/internal/model"
)

type Exporter interface {
	Export(ctx context.Context, tracks []model.Track, resolution model.Resolution, fps, duration float64) ([]byte, error)
}

type MockExporter struct {
	// Latency simulates encode time; zero means immediate.
	Latency time.Duration
}

func NewMockExporter() *MockExporter {
	return &MockExporter{Latency: 500 * time.Millisecond}
}

func (e *MockExporter) Export(ctx context.Context, tracks []model.Track, resolution model.Resolution, fps, duration float64) ([]byte, error) {
	if fps < 1 || fps > 120 {
		return nil, fmt.Errorf("fps out of range: %v", fps)
	}
	if duration < 1 || duration > 3600 {
		return nil, fmt.Errorf("duration out of range: %v", duration)
	}
	if resolution.Width <= 0 || resolution.Height <= 0 {
		return nil, fmt.Errorf("bad resolution: %dx%d", resolution.Width, resolution.Height)
	}
	if e.Latency > 0 {
		timer := time.NewTimer(e.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	clips := 0
	for _, t := range tracks {
		clips += len(t.Clips)
	}
	var buf bytes.Buffer
	// ftyp box header keeps naive MIME sniffers happy with the placeholder.
	buf.Write([]byte{0x00, 0x00, 0x00, 0x20})
	buf.WriteString("ftypisom")
	fmt.Fprintf(&buf, "mock render %dx%d %gfps %gs %d clips",
		resolution.Width, resolution.Height, fps, duration, clips)
	return buf.Bytes(), nil
}
