// Package provider abstracts the external AI generation services behind one
// adapter interface. The mock adapter ships with the server so the whole
// generation flow works without upstream credentials.
package provider

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"vibeforge/server/internal/model"

	"github.com/google/uuid"
)

type Request struct {
	Tool    model.AITool
	Prompt  string
	Options Options
}

// Options are tool-specific knobs; tools ignore the ones they do not use.
type Options struct {
	Size     string
	Style    string
	Duration float64
	Model    string
}

type Result struct {
	// Data is a source reference usable directly as a clip or media source:
	// a URL for generated assets, plain text for transcription.
	Data string
}

type Adapter interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

type MockAdapter struct {
	rng *rand.Rand
}

func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockAdapter) Generate(ctx context.Context, req Request) (Result, error) {
	if !req.Tool.Valid() {
		return Result{}, fmt.Errorf("unsupported AI tool type: %s", req.Tool)
	}

	// Simulated upstream latency, scaled per tool with a little jitter.
	workDuration := 800 * time.Millisecond
	switch req.Tool {
	case model.ToolTextToImage:
		workDuration = 1200 * time.Millisecond
	case model.ToolImageToVideo:
		workDuration = 1600 * time.Millisecond
	case model.ToolBackgroundRemoval:
		workDuration = 900 * time.Millisecond
	case model.ToolSpeechToText:
		workDuration = 600 * time.Millisecond
	}
	workDuration += time.Duration(m.rng.Intn(200)) * time.Millisecond
	if err := waitCancelable(ctx, workDuration); err != nil {
		return Result{}, err
	}

	switch req.Tool {
	case model.ToolTextToImage:
		return Result{Data: fmt.Sprintf("https://assets.mock.local/images/%s.png", uuid.NewString())}, nil
	case model.ToolImageToVideo:
		return Result{Data: fmt.Sprintf("https://assets.mock.local/videos/%s.mp4", uuid.NewString())}, nil
	case model.ToolBackgroundRemoval:
		return Result{Data: fmt.Sprintf("https://assets.mock.local/cutouts/%s.png", uuid.NewString())}, nil
	case model.ToolSpeechToText:
		return Result{Data: mockTranscript(req.Prompt)}, nil
	}
	return Result{}, fmt.Errorf("unsupported AI tool type: %s", req.Tool)
}

func mockTranscript(prompt string) string {
	if prompt == "" {
		return "(no speech detected)"
	}
	return "Transcript of " + prompt
}

func waitCancelable(ctx context.Context, d time.Duration) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.NewTimer(d)
	defer timeout.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return nil
		case <-ticker.C:
		}
	}
}
