// Package timeline resolves which clips are active at a transport time.
// Everything here is a pure function over snapshots; no state is kept.
package timeline

import "vibeforge/server/internal/model"

// Active reports whether the half-open interval [position, position+duration)
// contains t. A clip ending exactly at t is not active; one starting exactly
// at t is. Non-positive durations are never active.
func Active(position, duration, t float64) bool {
	if duration <= 0 {
		return false
	}
	return t >= position && t < position+duration
}

// ActiveClip returns the representative playing clip at t: tracks are scanned
// in project order, clips in insertion order, first match wins. The ordering
// is the tie-break for overlapping clips and must stay stable.
func ActiveClip(tracks []model.Track, t float64) (model.Clip, string, bool) {
	for _, track := range tracks {
		for _, clip := range track.Clips {
			if Active(clip.Position, clip.Duration, t) {
				return clip, track.ID, true
			}
		}
	}
	return model.Clip{}, "", false
}

// ActiveClipInTrack is the single-track variant, used for per-lane rendering.
func ActiveClipInTrack(track model.Track, t float64) (model.Clip, bool) {
	for _, clip := range track.Clips {
		if Active(clip.Position, clip.Duration, t) {
			return clip, true
		}
	}
	return model.Clip{}, false
}

// ActiveClips collects every active clip across all tracks at t, in the same
// track-then-insertion order. Callers that composite layers want all of them,
// not just the representative one.
func ActiveClips(tracks []model.Track, t float64) []model.Clip {
	var out []model.Clip
	for _, track := range tracks {
		for _, clip := range track.Clips {
			if Active(clip.Position, clip.Duration, t) {
				out = append(out, clip)
			}
		}
	}
	return out
}
