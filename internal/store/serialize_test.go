package store

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"vibeforge/server/internal/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 0, 5))
	st.AddClip("video-track-1", testClip("c2", 5, 3))
	st.AddClip("audio-track-1", testClip("a1", 1, 8))
	name := "Captions"
	st.UpdateTrack("overlay-track-1", TrackPatch{Name: &name})

	original, _ := st.ActiveProject()

	data, err := st.ExportProject()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := st.ImportProject(data); err != nil {
		t.Fatalf("import: %v", err)
	}

	restored, _ := st.ActiveProject()
	if !reflect.DeepEqual(original, restored) {
		t.Fatalf("round trip not equivalent:\noriginal %+v\nrestored %+v", original, restored)
	}
}

func TestExportWithoutProject(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.ExportProject(); !errors.Is(err, ErrNoProject) {
		t.Fatalf("err = %v, want ErrNoProject", err)
	}
}

func TestImportRejectsMalformedPayload(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	before, _ := st.ActiveProject()

	cases := []struct {
		name string
		data string
	}{
		{"not json", "{nope"},
		{"empty id", `{"id":"","name":"x","tracks":[],"duration":10,"resolution":{"width":1920,"height":1080},"fps":30}`},
		{"negative duration", `{"id":"p","name":"x","tracks":[],"duration":-1,"resolution":{"width":1920,"height":1080},"fps":30}`},
		{"zero fps", `{"id":"p","name":"x","tracks":[],"duration":10,"resolution":{"width":1920,"height":1080},"fps":0}`},
		{"bad track kind", `{"id":"p","name":"x","tracks":[{"id":"t","type":"hologram","name":"t","clips":[]}],"duration":10,"resolution":{"width":1920,"height":1080},"fps":30}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := st.ImportProject(tc.data); !errors.Is(err, ErrBadPayload) {
				t.Fatalf("err = %v, want ErrBadPayload", err)
			}
			after, _ := st.ActiveProject()
			if !reflect.DeepEqual(before, after) {
				t.Fatalf("failed import mutated the active project")
			}
		})
	}
}

func TestImportReplacesActiveProject(t *testing.T) {
	st := newTestStore(t)
	st.CreateProject()
	st.AddClip("video-track-1", testClip("c1", 0, 5))
	st.SelectClip("c1")
	st.SetCurrentTime(12)

	other := model.NewDefaultProject(1700000100000)
	other.ID = "project-imported"
	other.Name = "Imported Cut"
	payload, err := json.Marshal(other)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	if err := st.ImportProject(string(payload)); err != nil {
		t.Fatalf("import: %v", err)
	}
	p, ok := st.ActiveProject()
	if !ok || p.ID != "project-imported" {
		t.Fatalf("active project = %+v", p)
	}
	if st.SelectedClip() != "" {
		t.Fatalf("selection must clear on import")
	}
	// The replaced project joins the known-projects list alongside the old one.
	if got := len(st.Projects()); got != 2 {
		t.Fatalf("projects list = %d entries, want 2", got)
	}
}
