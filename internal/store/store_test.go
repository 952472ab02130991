package store

import (
	"reflect"
	"testing"

	"vibeforge/server/internal/events"
	"vibeforge/server/internal/model"
)

func newTestStore(t *testing.T) *ProjectStore {
	t.Helper()
	st := NewProjectStore(events.NewHub(), 50)
	var tick int64 = 1700000000000
	st.SetClock(func() int64 {
		tick++
		return tick
	})
	return st
}

func testClip(id string, position, duration float64) model.Clip {
	return model.Clip{
		ID:       id,
		Kind:     model.MediaVideo,
		Source:   "https://media.local/" + id + ".mp4",
		Duration: duration,
		Position: position,
	}
}

func TestCreateProjectDefaults(t *testing.T) {
	st := newTestStore(t)
	p := st.CreateProject()

	if len(p.Tracks) != 3 {
		t.Fatalf("default project has %d tracks, want 3", len(p.Tracks))
	}
	wantNames := []string{"Video Track 1", "Audio Track 1", "Overlay Track 1"}
	wantKinds := []model.TrackKind{model.TrackVideo, model.TrackAudio, model.TrackOverlay}
	for i, tr := range p.Tracks {
		if tr.Name != wantNames[i] {
			t.Errorf("track %d name = %q, want %q", i, tr.Name, wantNames[i])
		}
		if tr.Kind != wantKinds[i] {
			t.Errorf("track %d kind = %q, want %q", i, tr.Kind, wantKinds[i])
		}
		if len(tr.Clips) != 0 {
			t.Errorf("track %d has %d clips, want 0", i, len(tr.Clips))
		}
	}
	if p.Duration != 60 {
		t.Errorf("duration = %v, want 60", p.Duration)
	}
	if p.Resolution.Width != 1920 || p.Resolution.Height != 1080 {
		t.Errorf("resolution = %dx%d, want 1920x1080", p.Resolution.Width, p.Resolution.Height)
	}
	if p.FPS != 30 {
		t.Errorf("fps = %v, want 30", p.FPS)
	}
}

func TestAddClipUnknownTrackIsPureNoop(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	before, _ := st.ActiveProject()

	st.AddClip("no-such-track", testClip("c1", 0, 5))

	after, _ := st.ActiveProject()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("project changed after add into unknown track:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestRemoveClipIdempotent(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 0, 5))
	st.AddClip("video-track-1", testClip("c2", 5, 5))

	st.RemoveClip("video-track-1", "c1")
	once, _ := st.ActiveProject()

	st.RemoveClip("video-track-1", "c1")
	twice, _ := st.ActiveProject()

	// Timestamps only move on successful mutations, so the second call
	// must leave everything identical.
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second remove changed the project")
	}
	if len(once.Tracks[0].Clips) != 1 || once.Tracks[0].Clips[0].ID != "c2" {
		t.Fatalf("remaining clips wrong: %+v", once.Tracks[0].Clips)
	}
}

func countClip(p model.Project, clipID string) (int, string) {
	n := 0
	trackID := ""
	for _, tr := range p.Tracks {
		for _, c := range tr.Clips {
			if c.ID == clipID {
				n++
				trackID = tr.ID
			}
		}
	}
	return n, trackID
}

func TestMoveClipAcrossTracks(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 2, 5))

	st.MoveClip("c1", "video-track-1", "overlay-track-1", 12)

	p, _ := st.ActiveProject()
	n, trackID := countClip(p, "c1")
	if n != 1 {
		t.Fatalf("clip exists %d times, want exactly once", n)
	}
	if trackID != "overlay-track-1" {
		t.Fatalf("clip is on %q, want overlay-track-1", trackID)
	}
	moved, _, _ := st.FindClip("c1")
	if moved.Position != 12 {
		t.Fatalf("position = %v, want 12", moved.Position)
	}
	if moved.TrackIndex != 2 {
		t.Fatalf("track index = %d, want 2", moved.TrackIndex)
	}
}

func TestMoveClipSameTrackReordersToEnd(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 0, 5))
	st.AddClip("video-track-1", testClip("c2", 5, 5))

	st.MoveClip("c1", "video-track-1", "video-track-1", 20)

	p, _ := st.ActiveProject()
	clips := p.Tracks[0].Clips
	if len(clips) != 2 {
		t.Fatalf("track has %d clips, want 2", len(clips))
	}
	// Remove+append semantics: the moved clip lands last.
	if clips[0].ID != "c2" || clips[1].ID != "c1" {
		t.Fatalf("order = [%s %s], want [c2 c1]", clips[0].ID, clips[1].ID)
	}
	if clips[1].Position != 20 {
		t.Fatalf("position = %v, want 20", clips[1].Position)
	}
}

func TestMoveClipAbsentSourceAborts(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("audio-track-1", testClip("c1", 0, 5))
	before, _ := st.ActiveProject()

	// c1 lives on the audio track, not the named source; nothing may change.
	st.MoveClip("c1", "video-track-1", "overlay-track-1", 9)

	after, _ := st.ActiveProject()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("move with absent source mutated the project")
	}
}

func TestUpdateClipMergesOnlyTarget(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 0, 5))
	st.AddClip("video-track-1", testClip("c2", 5, 5))

	pos := 7.5
	vol := 0.25
	st.UpdateClip("video-track-1", "c2", ClipPatch{Position: &pos, Volume: &vol})

	c1, _, _ := st.FindClip("c1")
	c2, _, _ := st.FindClip("c2")
	if c1.Position != 0 || c1.Volume != nil {
		t.Fatalf("c1 was touched: %+v", c1)
	}
	if c2.Position != 7.5 || c2.Volume == nil || *c2.Volume != 0.25 {
		t.Fatalf("c2 not merged: %+v", c2)
	}
}

func TestRemoveTrackDiscardsClipsAndReindexes(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 0, 5))
	st.AddClip("overlay-track-1", testClip("o1", 0, 5))

	st.RemoveTrack("video-track-1")

	p, _ := st.ActiveProject()
	if len(p.Tracks) != 2 {
		t.Fatalf("track count = %d, want 2", len(p.Tracks))
	}
	if n, _ := countClip(p, "c1"); n != 0 {
		t.Fatalf("clip of removed track survived")
	}
	// The overlay track shifted from slot 2 to slot 1.
	o1, _, _ := st.FindClip("o1")
	if o1.TrackIndex != 1 {
		t.Fatalf("o1 track index = %d, want 1", o1.TrackIndex)
	}

	// Unknown id stays a no-op.
	before, _ := st.ActiveProject()
	st.RemoveTrack("video-track-1")
	after, _ := st.ActiveProject()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("removing an unknown track mutated the project")
	}
}

func TestUpdateTrack(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()

	name := "Narration"
	muted := true
	st.UpdateTrack("audio-track-1", TrackPatch{Name: &name, Muted: &muted})

	p, _ := st.ActiveProject()
	if p.Tracks[1].Name != "Narration" || !p.Tracks[1].Muted {
		t.Fatalf("track not updated: %+v", p.Tracks[1])
	}
	if p.Tracks[1].Volume != 1 {
		t.Fatalf("untouched field changed: volume = %v", p.Tracks[1].Volume)
	}
}

func TestCopyPaste(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	src := testClip("c1", 2, 5)
	vol := 0.8
	src.Volume = &vol
	src.Effects = &model.Effects{Blur: f64(1.5)}
	st.AddClip("video-track-1", src)

	st.CopyClip("c1")
	pasted, ok := st.PasteClip("overlay-track-1", 10)
	if !ok {
		t.Fatalf("paste failed with a loaded clipboard")
	}
	if pasted.ID == "c1" || pasted.ID == "" {
		t.Fatalf("pasted clip must get a fresh id, got %q", pasted.ID)
	}
	if pasted.Position != 10 {
		t.Fatalf("pasted position = %v, want 10", pasted.Position)
	}
	if pasted.Source != src.Source || pasted.Duration != src.Duration || pasted.Kind != src.Kind {
		t.Fatalf("pasted clip fields differ from source: %+v", pasted)
	}
	if pasted.Volume == nil || *pasted.Volume != 0.8 {
		t.Fatalf("volume not copied")
	}
	if pasted.Effects == nil || pasted.Effects.Blur == nil || *pasted.Effects.Blur != 1.5 {
		t.Fatalf("effects not copied")
	}

	// Source untouched.
	orig, trackID, _ := st.FindClip("c1")
	if trackID != "video-track-1" || orig.Position != 2 {
		t.Fatalf("copy moved the source clip")
	}
}

func TestPasteEmptyClipboardIsNoop(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	before, _ := st.ActiveProject()

	if _, ok := st.PasteClip("video-track-1", 3); ok {
		t.Fatalf("paste with empty clipboard must no-op")
	}
	after, _ := st.ActiveProject()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("empty paste mutated the project")
	}
}

func TestPasteUnknownTrackIsNoop(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 0, 5))
	st.CopyClip("c1")
	before, _ := st.ActiveProject()

	if _, ok := st.PasteClip("gone", 3); ok {
		t.Fatalf("paste into unknown track must no-op")
	}
	after, _ := st.ActiveProject()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("paste into unknown track mutated the project")
	}
}

func TestUpdatedAtBumpsOnMutation(t *testing.T) {
	st := newTestStore(t)
	p := st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 0, 5))
	after, _ := st.ActiveProject()
	if after.UpdatedAt <= p.UpdatedAt {
		t.Fatalf("updatedAt not bumped: %d -> %d", p.UpdatedAt, after.UpdatedAt)
	}
}

func TestReadersGetCopies(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 0, 5))

	snapshot, _ := st.ActiveProject()
	snapshot.Tracks[0].Clips[0].Position = 99

	fresh, _, _ := st.FindClip("c1")
	if fresh.Position != 0 {
		t.Fatalf("mutating a snapshot leaked into the store")
	}
}

func TestGenerationHistory(t *testing.T) {
	st := newTestStore(t)
	st.AddGeneration(model.AIGeneration{ID: "g1", Tool: model.ToolTextToImage, Status: model.GenerationPending})
	st.AddGeneration(model.AIGeneration{ID: "g2", Tool: model.ToolSpeechToText, Status: model.GenerationPending})

	gens := st.Generations()
	if len(gens) != 2 || gens[0].ID != "g2" {
		t.Fatalf("history must be newest-first: %+v", gens)
	}

	status := model.GenerationCompleted
	result := "ipfs://bafy123"
	st.UpdateGeneration("g1", GenerationPatch{Status: &status, Result: &result})
	g, ok := st.GetGeneration("g1")
	if !ok || g.Status != model.GenerationCompleted || g.Result != result {
		t.Fatalf("generation not updated: %+v", g)
	}
}

func TestGenerationDisplayCap(t *testing.T) {
	st := NewProjectStore(events.NewHub(), 3)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		st.AddGeneration(model.AIGeneration{ID: id, Tool: model.ToolTextToImage})
	}
	gens := st.Generations()
	if len(gens) != 3 {
		t.Fatalf("display list = %d entries, want cap 3", len(gens))
	}
	// Storage keeps everything.
	if _, ok := st.GetGeneration("a"); !ok {
		t.Fatalf("oldest record evicted from storage")
	}
}

func TestMediaLibraryFilter(t *testing.T) {
	st := newTestStore(t)
	st.AddMediaItem(model.MediaItem{ID: "m1", Kind: model.MediaVideo, Name: "Sunset Drone"})
	st.AddMediaItem(model.MediaItem{ID: "m2", Kind: model.MediaAudio, Name: "Sunset Theme"})
	st.AddMediaItem(model.MediaItem{ID: "m3", Kind: model.MediaImage, Name: "Logo"})

	if got := st.MediaLibrary("", ""); len(got) != 3 {
		t.Fatalf("unfiltered = %d, want 3", len(got))
	}
	if got := st.MediaLibrary("sunset", ""); len(got) != 2 {
		t.Fatalf("query filter = %d, want 2", len(got))
	}
	if got := st.MediaLibrary("sunset", model.MediaAudio); len(got) != 1 || got[0].ID != "m2" {
		t.Fatalf("combined filter wrong: %+v", got)
	}

	st.RemoveMediaItem("m3")
	if _, ok := st.GetMediaItem("m3"); ok {
		t.Fatalf("m3 still present after removal")
	}
}

func f64(v float64) *float64 { return &v }
