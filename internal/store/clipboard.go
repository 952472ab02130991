package store

import (
	"vibeforge/server/internal/model"

	"github.com/google/uuid"
)

// CopyClip fills the single clipboard slot with a full copy of the clip,
// last write wins. The source clip stays where it is. Unknown id no-ops.
func (s *ProjectStore) CopyClip(clipID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	for _, t := range s.current.Tracks {
		for _, c := range t.Clips {
			if c.ID == clipID {
				cp := c.Clone()
				s.clipboard = &cp
				return
			}
		}
	}
}

// PasteClip places a copy of the clipboard clip into the target track at the
// given position, under a fresh id so clip ids stay unique. Empty clipboard
// or unknown track is a no-op.
func (s *ProjectStore) PasteClip(trackID string, position float64) (model.Clip, bool) {
	s.mu.Lock()
	if s.clipboard == nil {
		s.mu.Unlock()
		return model.Clip{}, false
	}
	track := s.findTrack(trackID)
	if track == nil {
		s.mu.Unlock()
		return model.Clip{}, false
	}
	pasted := s.clipboard.Clone()
	pasted.ID = "clip-" + uuid.NewString()
	pasted.Position = position
	pasted.TrackIndex = s.trackIndex(trackID)
	track.Clips = append(track.Clips, pasted)
	s.current.UpdatedAt = s.now()
	out := pasted.Clone()
	s.mu.Unlock()

	s.publish(model.EventClipPasted, map[string]any{"track_id": trackID, "clip_id": out.ID})
	return out, true
}

// ClipboardClip exposes the clipboard content, mainly for inspection.
func (s *ProjectStore) ClipboardClip() (model.Clip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clipboard == nil {
		return model.Clip{}, false
	}
	return s.clipboard.Clone(), true
}
