package timeline

import (
	"testing"

	"vibeforge/server/internal/model"
)

func TestActive(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		duration float64
		t        float64
		want     bool
	}{
		{"inside", 5, 3, 6.5, true},
		{"at start boundary", 5, 3, 5, true},
		{"just before end", 5, 3, 7.999, true},
		{"at end boundary", 5, 3, 8.0, false},
		{"just before start", 5, 3, 4.999, false},
		{"zero duration", 5, 0, 5, false},
		{"negative duration", 5, -1, 5, false},
		{"at zero", 0, 10, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Active(tt.position, tt.duration, tt.t); got != tt.want {
				t.Fatalf("Active(%v, %v, %v) = %v, want %v", tt.position, tt.duration, tt.t, got, tt.want)
			}
		})
	}
}

func TestActiveClipFirstMatchOrder(t *testing.T) {
	tracks := []model.Track{
		{
			ID:   "video-track-1",
			Kind: model.TrackVideo,
			Clips: []model.Clip{
				{ID: "c1", Kind: model.MediaVideo, Position: 0, Duration: 5},
				{ID: "c2", Kind: model.MediaVideo, Position: 3, Duration: 5},
			},
		},
		{
			ID:   "audio-track-1",
			Kind: model.TrackAudio,
			Clips: []model.Clip{
				{ID: "a1", Kind: model.MediaAudio, Position: 0, Duration: 60},
			},
		},
	}

	clip, trackID, ok := ActiveClip(tracks, 4)
	if !ok {
		t.Fatalf("expected an active clip at t=4")
	}
	if clip.ID != "c1" {
		t.Fatalf("overlap tie-break: got %q, want c1", clip.ID)
	}
	if trackID != "video-track-1" {
		t.Fatalf("track id = %q, want video-track-1", trackID)
	}

	// After c1 ends, c2 takes over even though a1 still overlaps on the
	// later track.
	clip, _, ok = ActiveClip(tracks, 5)
	if !ok || clip.ID != "c2" {
		t.Fatalf("at t=5 got %q, want c2", clip.ID)
	}

	// Only the audio track covers t=10.
	clip, trackID, ok = ActiveClip(tracks, 10)
	if !ok || clip.ID != "a1" || trackID != "audio-track-1" {
		t.Fatalf("at t=10 got clip=%q track=%q, want a1/audio-track-1", clip.ID, trackID)
	}

	if _, _, ok := ActiveClip(tracks, 60); ok {
		t.Fatalf("no clip should be active at t=60")
	}
}

func TestActiveClipInTrack(t *testing.T) {
	track := model.Track{
		ID:   "t1",
		Kind: model.TrackOverlay,
		Clips: []model.Clip{
			{ID: "x", Position: 2, Duration: 2},
			{ID: "y", Position: 10, Duration: 1},
		},
	}
	if clip, ok := ActiveClipInTrack(track, 3.5); !ok || clip.ID != "x" {
		t.Fatalf("expected x active at 3.5")
	}
	if _, ok := ActiveClipInTrack(track, 4); ok {
		t.Fatalf("x ends at 4, nothing should be active")
	}
}

func TestActiveClipsCollectsAllLayers(t *testing.T) {
	tracks := []model.Track{
		{ID: "v", Clips: []model.Clip{{ID: "base", Position: 0, Duration: 10}}},
		{ID: "o", Clips: []model.Clip{{ID: "title", Position: 1, Duration: 3}}},
	}
	got := ActiveClips(tracks, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 active clips, got %d", len(got))
	}
	if got[0].ID != "base" || got[1].ID != "title" {
		t.Fatalf("layer order wrong: %q, %q", got[0].ID, got[1].ID)
	}
}
