// Package store owns the canonical editor state: the working project, the
// saved project list, selection, transport time mirror, clipboard, media
// library and AI generation history. Every mutation is one atomic transition
// under a single mutex; accessors hand out deep copies so readers never
// alias live state across a mutation.
package store

import (
	"errors"
	"sync"
	"time"

	"vibeforge/server/internal/events"
	"vibeforge/server/internal/model"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrNoProject  = errors.New("no active project")
	ErrBadPayload = errors.New("bad payload")
)

type ProjectStore struct {
	mu  sync.RWMutex
	hub *events.Hub
	now func() int64

	current  *model.Project
	projects []model.Project

	clipboard    *model.Clip
	selectedClip string
	currentTime  float64
	zoom         float64

	library     []model.MediaItem
	generations []model.AIGeneration
	historyCap  int

	users         map[string]model.User
	userByEmail   map[string]string
	refreshTokens map[string]model.RefreshToken
}

func NewProjectStore(hub *events.Hub, historyCap int) *ProjectStore {
	if historyCap < 1 {
		historyCap = 50
	}
	return &ProjectStore{
		hub:           hub,
		now:           func() int64 { return time.Now().UnixMilli() },
		zoom:          1,
		historyCap:    historyCap,
		users:         map[string]model.User{},
		userByEmail:   map[string]string{},
		refreshTokens: map[string]model.RefreshToken{},
	}
}

// SetClock overrides the millisecond clock; tests use it for deterministic
// ids and timestamps.
func (s *ProjectStore) SetClock(now func() int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *ProjectStore) publish(eventType model.StateEventType, payload map[string]any) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(model.StateEvent{
		Type:    eventType,
		TS:      time.Now().UnixMilli(),
		Payload: payload,
	})
}

// CreateProject makes a fresh default project the working project. Always
// succeeds.
func (s *ProjectStore) CreateProject() model.Project {
	s.mu.Lock()
	p := model.NewDefaultProject(s.now())
	s.current = &p
	s.projects = append([]model.Project{p.Clone()}, s.projects...)
	s.selectedClip = ""
	s.currentTime = 0
	out := p.Clone()
	s.mu.Unlock()

	s.publish(model.EventProjectCreated, map[string]any{"project_id": out.ID})
	return out
}

// SetActiveProject replaces the working project wholesale. nil clears it.
func (s *ProjectStore) SetActiveProject(p *model.Project) {
	s.mu.Lock()
	if p == nil {
		s.current = nil
	} else {
		cp := p.Clone()
		s.current = &cp
	}
	s.selectedClip = ""
	var id string
	if s.current != nil {
		id = s.current.ID
	}
	s.mu.Unlock()

	s.publish(model.EventProjectReplaced, map[string]any{"project_id": id})
}

// ActiveProject returns a deep copy of the working project.
func (s *ProjectStore) ActiveProject() (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.Project{}, false
	}
	return s.current.Clone(), true
}

func (s *ProjectStore) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

type ProjectPatch struct {
	Name       *string
	Duration   *float64
	Resolution *model.Resolution
	FPS        *float64
}

// UpdateActiveProject merges top-level fields into the working project.
// No-op without one.
func (s *ProjectStore) UpdateActiveProject(patch ProjectPatch) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	if patch.Name != nil {
		s.current.Name = *patch.Name
	}
	if patch.Duration != nil && *patch.Duration >= 0 {
		s.current.Duration = *patch.Duration
	}
	if patch.Resolution != nil && patch.Resolution.Width > 0 && patch.Resolution.Height > 0 {
		s.current.Resolution = *patch.Resolution
	}
	if patch.FPS != nil && *patch.FPS > 0 {
		s.current.FPS = *patch.FPS
	}
	s.current.UpdatedAt = s.now()
	id := s.current.ID
	s.mu.Unlock()

	s.publish(model.EventProjectUpdated, map[string]any{"project_id": id})
}

// DeleteProject removes a project from the saved list; if it is the working
// project, the working project is cleared too.
func (s *ProjectStore) DeleteProject(projectID string) {
	s.mu.Lock()
	kept := s.projects[:0]
	for _, p := range s.projects {
		if p.ID != projectID {
			kept = append(kept, p)
		}
	}
	s.projects = kept
	if s.current != nil && s.current.ID == projectID {
		s.current = nil
		s.selectedClip = ""
	}
	s.mu.Unlock()

	s.publish(model.EventProjectDeleted, map[string]any{"project_id": projectID})
}

// AddTrack appends a lane to the working project. No-op without one.
func (s *ProjectStore) AddTrack(track model.Track) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	if track.Clips == nil {
		track.Clips = []model.Clip{}
	}
	s.current.Tracks = append(s.current.Tracks, track.Clone())
	s.reindexClips()
	s.current.UpdatedAt = s.now()
	s.mu.Unlock()

	s.publish(model.EventTrackAdded, map[string]any{"track_id": track.ID})
}

// RemoveTrack drops a lane and every clip on it. Unknown id is a no-op.
func (s *ProjectStore) RemoveTrack(trackID string) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	found := false
	kept := s.current.Tracks[:0]
	for _, t := range s.current.Tracks {
		if t.ID == trackID {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		s.mu.Unlock()
		return
	}
	s.current.Tracks = kept
	s.reindexClips()
	s.current.UpdatedAt = s.now()
	s.mu.Unlock()

	s.publish(model.EventTrackRemoved, map[string]any{"track_id": trackID})
}

type TrackPatch struct {
	Name   *string
	Kind   *model.TrackKind
	Muted  *bool
	Volume *float64
}

// UpdateTrack merges fields into the named track. Unknown id is a no-op.
func (s *ProjectStore) UpdateTrack(trackID string, patch TrackPatch) {
	s.mu.Lock()
	track := s.findTrack(trackID)
	if track == nil {
		s.mu.Unlock()
		return
	}
	if patch.Name != nil {
		track.Name = *patch.Name
	}
	if patch.Kind != nil && patch.Kind.Valid() {
		track.Kind = *patch.Kind
	}
	if patch.Muted != nil {
		track.Muted = *patch.Muted
	}
	if patch.Volume != nil {
		track.Volume = *patch.Volume
	}
	s.current.UpdatedAt = s.now()
	s.mu.Unlock()

	s.publish(model.EventTrackUpdated, map[string]any{"track_id": trackID})
}

// AddClip appends a clip to the named track. An unknown track is a silent
// no-op: drop handlers routinely race against track deletion.
func (s *ProjectStore) AddClip(trackID string, clip model.Clip) {
	s.mu.Lock()
	track := s.findTrack(trackID)
	if track == nil {
		s.mu.Unlock()
		return
	}
	clip.TrackIndex = s.trackIndex(trackID)
	track.Clips = append(track.Clips, clip.Clone())
	s.current.UpdatedAt = s.now()
	s.mu.Unlock()

	s.publish(model.EventClipAdded, map[string]any{"track_id": trackID, "clip_id": clip.ID})
}

// RemoveClip removes a clip if present; idempotent.
func (s *ProjectStore) RemoveClip(trackID, clipID string) {
	s.mu.Lock()
	track := s.findTrack(trackID)
	if track == nil {
		s.mu.Unlock()
		return
	}
	found := false
	kept := track.Clips[:0]
	for _, c := range track.Clips {
		if c.ID == clipID {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		s.mu.Unlock()
		return
	}
	track.Clips = kept
	s.current.UpdatedAt = s.now()
	s.mu.Unlock()

	s.publish(model.EventClipRemoved, map[string]any{"track_id": trackID, "clip_id": clipID})
}

type ClipPatch struct {
	Kind      *model.MediaKind
	Source    *string
	StartTime *float64
	Duration  *float64
	Position  *float64
	Volume    *float64
	Effects   *model.Effects
	Text      *model.TextStyle
}

// UpdateClip merges fields into the matching clip only. Unknown ids no-op.
func (s *ProjectStore) UpdateClip(trackID, clipID string, patch ClipPatch) {
	s.mu.Lock()
	track := s.findTrack(trackID)
	if track == nil {
		s.mu.Unlock()
		return
	}
	var target *model.Clip
	for i := range track.Clips {
		if track.Clips[i].ID == clipID {
			target = &track.Clips[i]
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return
	}
	if patch.Kind != nil && patch.Kind.Valid() {
		target.Kind = *patch.Kind
	}
	if patch.Source != nil {
		target.Source = *patch.Source
	}
	if patch.StartTime != nil && *patch.StartTime >= 0 {
		target.StartTime = *patch.StartTime
	}
	if patch.Duration != nil && *patch.Duration >= 0 {
		target.Duration = *patch.Duration
	}
	if patch.Position != nil && *patch.Position >= 0 {
		target.Position = *patch.Position
	}
	if patch.Volume != nil {
		v := *patch.Volume
		target.Volume = &v
	}
	if patch.Effects != nil {
		e := *patch.Effects
		target.Effects = &e
	}
	if patch.Text != nil {
		t := *patch.Text
		target.Text = &t
	}
	s.current.UpdatedAt = s.now()
	s.mu.Unlock()

	s.publish(model.EventClipUpdated, map[string]any{"track_id": trackID, "clip_id": clipID})
}

// MoveClip atomically transfers a clip from one track to another, overwriting
// its position. If the clip is not in the source track the whole operation
// aborts. A same-track move still removes and re-appends, so the clip lands
// at the end of the track's sequence; that reordering is part of the
// contract.
func (s *ProjectStore) MoveClip(clipID, fromTrackID, toTrackID string, newPosition float64) {
	s.mu.Lock()
	from := s.findTrack(fromTrackID)
	to := s.findTrack(toTrackID)
	if from == nil || to == nil {
		s.mu.Unlock()
		return
	}
	var moved *model.Clip
	for i := range from.Clips {
		if from.Clips[i].ID == clipID {
			c := from.Clips[i].Clone()
			moved = &c
			break
		}
	}
	if moved == nil {
		s.mu.Unlock()
		return
	}
	kept := from.Clips[:0]
	for _, c := range from.Clips {
		if c.ID != clipID {
			kept = append(kept, c)
		}
	}
	from.Clips = kept
	moved.Position = newPosition
	moved.TrackIndex = s.trackIndex(toTrackID)
	to.Clips = append(to.Clips, *moved)
	s.current.UpdatedAt = s.now()
	s.mu.Unlock()

	s.publish(model.EventClipMoved, map[string]any{
		"clip_id":  clipID,
		"from":     fromTrackID,
		"to":       toTrackID,
		"position": newPosition,
	})
}

// FindClip locates a clip by id across all tracks of the working project.
func (s *ProjectStore) FindClip(clipID string) (model.Clip, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.Clip{}, "", false
	}
	for _, t := range s.current.Tracks {
		for _, c := range t.Clips {
			if c.ID == clipID {
				return c.Clone(), t.ID, true
			}
		}
	}
	return model.Clip{}, "", false
}

// SelectClip records the UI selection; empty string clears it. Selection is
// UI state, deliberately separate from clip lifecycle.
func (s *ProjectStore) SelectClip(clipID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedClip = clipID
}

func (s *ProjectStore) SelectedClip() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedClip
}

// SetCurrentTime stores the transport time. Callers clamp; the store does
// not second-guess the scheduler.
func (s *ProjectStore) SetCurrentTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTime = t
}

func (s *ProjectStore) CurrentTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTime
}

func (s *ProjectStore) SetZoom(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if zoom > 0 {
		s.zoom = zoom
	}
}

func (s *ProjectStore) Zoom() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zoom
}

// findTrack returns a pointer into current state; callers hold s.mu.
func (s *ProjectStore) findTrack(trackID string) *model.Track {
	if s.current == nil {
		return nil
	}
	for i := range s.current.Tracks {
		if s.current.Tracks[i].ID == trackID {
			return &s.current.Tracks[i]
		}
	}
	return nil
}

func (s *ProjectStore) trackIndex(trackID string) int {
	for i := range s.current.Tracks {
		if s.current.Tracks[i].ID == trackID {
			return i
		}
	}
	return 0
}

// reindexClips refreshes each clip's cached track slot after track ordering
// changes, keeping the redundant index consistent with membership.
func (s *ProjectStore) reindexClips() {
	for i := range s.current.Tracks {
		for j := range s.current.Tracks[i].Clips {
			s.current.Tracks[i].Clips[j].TrackIndex = i
		}
	}
}
