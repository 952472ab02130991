// Package playback runs the transport: a wall-clock ticker that advances the
// shared timeline position in fixed quanta and keeps an optional media
// follower pointed at whichever clip is active under the playhead.
package playback

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"vibeforge/server/internal/events"
	"vibeforge/server/internal/model"
	"vibeforge/server/internal/store"
	"vibeforge/server/internal/timeline"
)

type Config struct {
	// TickInterval is how often the loop fires; Quantum is how many timeline
	// seconds each tick adds. They are independent so tests can speed the
	// clock up without changing timeline arithmetic.
	TickInterval  time.Duration
	Quantum       float64
	SeekTolerance float64
}

func DefaultConfig() Config {
	return Config{
		TickInterval:  100 * time.Millisecond,
		Quantum:       0.1,
		SeekTolerance: 0.1,
	}
}

// Follower is a playback surface that renders one media source at a time,
// addressed in the source's own local seconds. Implementations are expected
// to be cheap to call from the tick loop.
type Follower interface {
	SetSource(kind model.MediaKind, source string)
	Play() error
	Pause()
	SetMuted(muted bool)
	Seek(offset float64) error
	Position() float64
}

type Scheduler struct {
	cfg   Config
	store *store.ProjectStore
	hub   *events.Hub
	log   *slog.Logger

	mu       sync.Mutex
	follower Follower
	playing  bool
	// activeClip is the id of the clip the follower is currently bound to,
	// "" when the follower is parked.
	activeClip string
	cancel     chan struct{}
	done       chan struct{}
}

func NewScheduler(st *store.ProjectStore, hub *events.Hub, log *slog.Logger, cfg Config) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.Quantum <= 0 {
		cfg.Quantum = DefaultConfig().Quantum
	}
	if cfg.SeekTolerance <= 0 {
		cfg.SeekTolerance = DefaultConfig().SeekTolerance
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{cfg: cfg, store: st, hub: hub, log: log}
}

// SetFollower attaches or detaches the playback surface. Safe at any time;
// an attached follower is synced on the next tick or seek.
func (s *Scheduler) SetFollower(f Follower) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.follower = f
	s.activeClip = ""
}

func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// State reports the transport as one consistent pair.
func (s *Scheduler) State() (playing bool, position float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing, s.store.CurrentTime()
}

// Play starts the tick loop. Calling Play while already playing is a no-op;
// playback resumes from the stored transport time, not from zero.
func (s *Scheduler) Play() {
	s.mu.Lock()
	if s.playing {
		s.mu.Unlock()
		return
	}
	if _, ok := s.store.ActiveProject(); !ok {
		s.mu.Unlock()
		return
	}
	s.playing = true
	s.cancel = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.cancel, s.done)
	s.syncFollowerLocked(s.store.CurrentTime())
	s.mu.Unlock()

	s.publish(model.EventPlaybackStarted, map[string]any{"position": s.store.CurrentTime()})
}

// Pause stops the loop and waits for the running tick goroutine to exit, so
// no tick lands after Pause returns.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	close(s.cancel)
	done := s.done
	if s.follower != nil {
		s.follower.Pause()
	}
	s.mu.Unlock()

	<-done
	s.publish(model.EventPlaybackStopped, map[string]any{"position": s.store.CurrentTime()})
}

// Seek moves the playhead, clamped to [0, project duration]. Works both
// paused and playing; while playing the follower is re-resolved immediately.
func (s *Scheduler) Seek(t float64) {
	p, ok := s.store.ActiveProject()
	if !ok {
		return
	}
	t = clamp(t, 0, p.Duration)

	s.mu.Lock()
	s.store.SetCurrentTime(t)
	s.syncFollowerLocked(t)
	s.mu.Unlock()

	s.publish(model.EventTransportTime, map[string]any{"position": t})
}

// HandleFollowerTime maps a follower-local position back onto the timeline.
// Only honored while paused: during playback the ticker is the single time
// source and follower progress reports would fight it.
func (s *Scheduler) HandleFollowerTime(local float64) {
	s.mu.Lock()
	if s.playing {
		s.mu.Unlock()
		return
	}
	p, ok := s.store.ActiveProject()
	if !ok {
		s.mu.Unlock()
		return
	}
	t := s.store.CurrentTime()
	clip, _, ok := timeline.ActiveClip(p.Tracks, t)
	if !ok || clip.Kind != model.MediaVideo {
		s.mu.Unlock()
		return
	}
	mapped := clamp(clip.Position+local, 0, p.Duration)
	s.store.SetCurrentTime(mapped)
	s.mu.Unlock()

	s.publish(model.EventTransportTime, map[string]any{"position": mapped})
}

// HandleFollowerEnded stops the transport in place when the follower's
// source runs out before the timeline does.
func (s *Scheduler) HandleFollowerEnded() {
	s.Pause()
}

func (s *Scheduler) loop(cancel <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			if !s.tick() {
				return
			}
		}
	}
}

// tick advances one quantum. Returns false when the loop should stop.
func (s *Scheduler) tick() bool {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return false
	}
	p, ok := s.store.ActiveProject()
	if !ok {
		s.stopLocked()
		s.mu.Unlock()
		s.publish(model.EventPlaybackStopped, map[string]any{"position": s.store.CurrentTime()})
		return false
	}
	t := s.store.CurrentTime() + s.cfg.Quantum
	if t >= p.Duration {
		// End of timeline: stop and rewind so the next Play starts over.
		s.store.SetCurrentTime(0)
		s.stopLocked()
		s.mu.Unlock()
		s.publish(model.EventTransportTime, map[string]any{"position": 0.0})
		s.publish(model.EventPlaybackStopped, map[string]any{"position": 0.0})
		return false
	}
	s.store.SetCurrentTime(t)
	s.syncFollowerLocked(t)
	s.mu.Unlock()

	s.publish(model.EventTransportTime, map[string]any{"position": t})
	return true
}

// stopLocked flips the transport off without waiting for the loop goroutine;
// the loop itself is the caller. s.mu is held.
func (s *Scheduler) stopLocked() {
	s.playing = false
	close(s.cancel)
	if s.follower != nil {
		s.follower.Pause()
	}
	s.activeClip = ""
}

// syncFollowerLocked re-resolves the clip under the playhead and drives the
// follower: rebind on clip change, reseek on drift beyond tolerance, park
// when no clip is active. Only video clips get drift correction; images and
// text have no internal clock. s.mu is held.
func (s *Scheduler) syncFollowerLocked(t float64) {
	if s.follower == nil {
		return
	}
	p, ok := s.store.ActiveProject()
	if !ok {
		return
	}
	clip, trackID, ok := timeline.ActiveClip(p.Tracks, t)
	if !ok {
		if s.activeClip != "" {
			s.follower.Pause()
			s.activeClip = ""
		}
		return
	}
	s.follower.SetMuted(trackMuted(p.Tracks, trackID))
	// The follower runs in the clip's local seconds, offset from the clip's
	// timeline placement.
	offset := t - clip.Position
	if clip.ID != s.activeClip {
		s.follower.SetSource(clip.Kind, clip.Source)
		if err := s.follower.Seek(offset); err != nil {
			s.log.Warn("follower seek failed", "clip_id", clip.ID, "err", err)
		}
		if s.playing {
			if err := s.follower.Play(); err != nil {
				s.log.Warn("follower play failed", "clip_id", clip.ID, "err", err)
			}
		}
		s.activeClip = clip.ID
		return
	}
	if clip.Kind != model.MediaVideo {
		return
	}
	if math.Abs(s.follower.Position()-offset) > s.cfg.SeekTolerance {
		if err := s.follower.Seek(offset); err != nil {
			s.log.Warn("follower reseek failed", "clip_id", clip.ID, "err", err)
		}
	}
}

func trackMuted(tracks []model.Track, trackID string) bool {
	for _, t := range tracks {
		if t.ID == trackID {
			return t.Muted || t.Volume == 0
		}
	}
	return false
}

func (s *Scheduler) publish(eventType model.StateEventType, payload map[string]any) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(model.StateEvent{
		Type:    eventType,
		TS:      time.Now().UnixMilli(),
		Payload: payload,
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
