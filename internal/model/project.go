package model

import (
	"errors"
	"fmt"
)

// NewDefaultProject builds a fresh project with the three standard lanes and
// no clips. now is Unix millis; the id is derived from it.
func NewDefaultProject(now int64) Project {
	return Project{
		ID:   fmt.Sprintf("project-%d", now),
		Name: fmt.Sprintf("Project %d", now),
		Tracks: []Track{
			{ID: "video-track-1", Kind: TrackVideo, Name: "Video Track 1", Clips: []Clip{}, Muted: false, Volume: 1},
			{ID: "audio-track-1", Kind: TrackAudio, Name: "Audio Track 1", Clips: []Clip{}, Muted: false, Volume: 1},
			{ID: "overlay-track-1", Kind: TrackOverlay, Name: "Overlay Track 1", Clips: []Clip{}, Muted: false, Volume: 1},
		},
		Duration:   60,
		Resolution: Resolution{Width: 1920, Height: 1080},
		FPS:        30,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a structurally independent copy.
func (c Clip) Clone() Clip {
	out := c
	if c.Volume != nil {
		v := *c.Volume
		out.Volume = &v
	}
	if c.Effects != nil {
		e := Effects{}
		if c.Effects.Brightness != nil {
			v := *c.Effects.Brightness
			e.Brightness = &v
		}
		if c.Effects.Contrast != nil {
			v := *c.Effects.Contrast
			e.Contrast = &v
		}
		if c.Effects.Saturation != nil {
			v := *c.Effects.Saturation
			e.Saturation = &v
		}
		if c.Effects.Blur != nil {
			v := *c.Effects.Blur
			e.Blur = &v
		}
		out.Effects = &e
	}
	if c.Text != nil {
		t := *c.Text
		out.Text = &t
	}
	return out
}

func (t Track) Clone() Track {
	out := t
	if t.Clips != nil {
		out.Clips = make([]Clip, len(t.Clips))
		for i, c := range t.Clips {
			out.Clips[i] = c.Clone()
		}
	}
	return out
}

func (p Project) Clone() Project {
	out := p
	if p.Tracks != nil {
		out.Tracks = make([]Track, len(p.Tracks))
		for i, t := range p.Tracks {
			out.Tracks[i] = t.Clone()
		}
	}
	return out
}

// Validate checks the structural invariants an imported project must hold.
func (p Project) Validate() error {
	if p.ID == "" {
		return errors.New("project id is empty")
	}
	if p.Duration < 0 {
		return errors.New("project duration is negative")
	}
	if p.Resolution.Width <= 0 || p.Resolution.Height <= 0 {
		return errors.New("project resolution must be positive")
	}
	if p.FPS <= 0 {
		return errors.New("project fps must be positive")
	}
	trackIDs := make(map[string]bool, len(p.Tracks))
	for _, t := range p.Tracks {
		if t.ID == "" {
			return errors.New("track id is empty")
		}
		if trackIDs[t.ID] {
			return fmt.Errorf("duplicate track id %q", t.ID)
		}
		trackIDs[t.ID] = true
		if !t.Kind.Valid() {
			return fmt.Errorf("track %q has unknown kind %q", t.ID, t.Kind)
		}
		clipIDs := make(map[string]bool, len(t.Clips))
		for _, c := range t.Clips {
			if c.ID == "" {
				return fmt.Errorf("track %q contains a clip with empty id", t.ID)
			}
			if clipIDs[c.ID] {
				return fmt.Errorf("duplicate clip id %q in track %q", c.ID, t.ID)
			}
			clipIDs[c.ID] = true
			if !c.Kind.Valid() {
				return fmt.Errorf("clip %q has unknown kind %q", c.ID, c.Kind)
			}
			if c.Position < 0 || c.Duration < 0 || c.StartTime < 0 {
				return fmt.Errorf("clip %q has negative timing", c.ID)
			}
		}
	}
	return nil
}
