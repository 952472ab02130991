package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"vibeforge/server/internal/auth"
	"vibeforge/server/internal/events"
	"vibeforge/server/internal/ipfs"
	"vibeforge/server/internal/model"
	"vibeforge/server/internal/playback"
	"vibeforge/server/internal/provider"
	"vibeforge/server/internal/render"
	"vibeforge/server/internal/snapshot"
	"vibeforge/server/internal/store"

	"github.com/gin-gonic/gin"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := events.NewHub()
	st := store.NewProjectStore(hub, 50)
	authSvc := auth.NewService(st, "test-secret", 15*time.Minute, 24*time.Hour)
	if err := authSvc.SeedDemoUser("demo@vibeforge.local", "demo123456"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	snaps, err := snapshot.Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open snapshots: %v", err)
	}
	t.Cleanup(func() { snaps.Close() })

	sched := playback.NewScheduler(st, hub, slog.Default(), playback.DefaultConfig())
	t.Cleanup(sched.Pause)

	uploader := ipfs.NewMockUploader()
	uploader.Latency = 0
	exporter := render.NewMockExporter()
	exporter.Latency = 0

	s := NewServer(Deps{
		Auth:      authSvc,
		Store:     st,
		Scheduler: sched,
		AI:        provider.NewMockAdapter(),
		Uploader:  uploader,
		Exporter:  exporter,
		Snapshots: snaps,
		Hub:       hub,
		Log:       slog.Default(),
		AITimeout: 30 * time.Second,
	})
	return s.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginDemo(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "demo@vibeforge.local",
		"password": "demo123456",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Data.AccessToken == "" {
		t.Fatalf("empty access token")
	}
	return resp.Data.AccessToken
}

func TestAuthRequired(t *testing.T) {
	router := setupTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/project", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", rec.Code)
	}
}

func TestProjectEditFlow(t *testing.T) {
	router := setupTestRouter(t)
	token := loginDemo(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/projects", token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project status=%d body=%s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data model.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode project: %v", err)
	}
	if len(created.Data.Tracks) != 3 {
		t.Fatalf("default project tracks = %d, want 3", len(created.Data.Tracks))
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/project/tracks/video-track-1/clips", token, map[string]any{
		"id":       "c1",
		"type":     "video",
		"source":   "https://media.local/c1.mp4",
		"duration": 5,
		"position": 2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add clip status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/project/clips/c1/move", token, map[string]any{
		"fromTrackId": "video-track-1",
		"toTrackId":   "overlay-track-1",
		"position":    10,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("move clip status=%d body=%s", rec.Code, rec.Body.String())
	}
	var moved struct {
		Data model.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &moved); err != nil {
		t.Fatalf("decode move response: %v", err)
	}
	if n := len(moved.Data.Tracks[0].Clips); n != 0 {
		t.Fatalf("source track still holds %d clips", n)
	}
	if n := len(moved.Data.Tracks[2].Clips); n != 1 || moved.Data.Tracks[2].Clips[0].Position != 10 {
		t.Fatalf("destination track wrong: %+v", moved.Data.Tracks[2].Clips)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/project/clips/c1/copy", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("copy clip status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/project/tracks/video-track-1/paste", token, map[string]any{
		"position": 4,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("paste clip status=%d body=%s", rec.Code, rec.Body.String())
	}
	var pasted struct {
		Data struct {
			Clip model.Clip `json:"clip"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &pasted); err != nil {
		t.Fatalf("decode paste response: %v", err)
	}
	if pasted.Data.Clip.ID == "c1" || pasted.Data.Clip.Position != 4 {
		t.Fatalf("pasted clip wrong: %+v", pasted.Data.Clip)
	}
}

func TestAddClipUnknownTrack(t *testing.T) {
	router := setupTestRouter(t)
	token := loginDemo(t, router)
	doJSON(t, router, http.MethodPost, "/api/v1/projects", token, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/project/tracks/gone/clips", token, map[string]any{
		"type":     "video",
		"source":   "s",
		"duration": 5,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
}

func TestExportImportEndpoints(t *testing.T) {
	router := setupTestRouter(t)
	token := loginDemo(t, router)
	doJSON(t, router, http.MethodPost, "/api/v1/projects", token, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/project/export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status=%d body=%s", rec.Code, rec.Body.String())
	}
	exported := rec.Body.String()

	rec = doJSON(t, router, http.MethodPost, "/api/v1/project/import", token, map[string]any{
		"data": exported,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("import status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/project/import", token, map[string]any{
		"data": "{broken",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed import status=%d, want 400", rec.Code)
	}
}

func TestPlaybackEndpoints(t *testing.T) {
	router := setupTestRouter(t)
	token := loginDemo(t, router)
	doJSON(t, router, http.MethodPost, "/api/v1/projects", token, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/playback/seek", token, map[string]any{"time": 12.5})
	if rec.Code != http.StatusOK {
		t.Fatalf("seek status=%d body=%s", rec.Code, rec.Body.String())
	}
	var state struct {
		Data struct {
			Playing     bool    `json:"playing"`
			CurrentTime float64 `json:"currentTime"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode seek response: %v", err)
	}
	if state.Data.CurrentTime != 12.5 {
		t.Fatalf("currentTime = %v, want 12.5", state.Data.CurrentTime)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/playback/play", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("play status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/playback/pause", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pause status=%d body=%s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode pause response: %v", err)
	}
	if state.Data.Playing {
		t.Fatalf("still playing after pause")
	}
}

func TestExportVideoValidation(t *testing.T) {
	router := setupTestRouter(t)
	token := loginDemo(t, router)
	doJSON(t, router, http.MethodPost, "/api/v1/projects", token, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/export", token, map[string]any{"fps": 500})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad fps status=%d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/export", token, map[string]any{})
	if rec.Code != http.StatusOK {
		t.Fatalf("export status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			CID string `json:"cid"`
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode export response: %v", err)
	}
	if resp.Data.CID == "" || resp.Data.URL == "" {
		t.Fatalf("export response missing artifact address: %+v", resp.Data)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	router := setupTestRouter(t)
	token := loginDemo(t, router)
	doJSON(t, router, http.MethodPost, "/api/v1/projects", token, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/snapshots", token, map[string]any{"label": "checkpoint"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create snapshot status=%d body=%s", rec.Code, rec.Body.String())
	}
	var snap struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	// Mutate, then restore back to the checkpoint.
	doJSON(t, router, http.MethodPatch, "/api/v1/project", token, map[string]any{"name": "mutated"})
	rec = doJSON(t, router, http.MethodPost, "/api/v1/snapshots/"+snap.Data.ID+"/restore", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore status=%d body=%s", rec.Code, rec.Body.String())
	}
	var restored struct {
		Data model.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &restored); err != nil {
		t.Fatalf("decode restored project: %v", err)
	}
	if restored.Data.Name == "mutated" {
		t.Fatalf("restore did not roll the name back")
	}
}
