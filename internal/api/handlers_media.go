package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"vibeforge/server/internal/model"
	"vibeforge/server/internal/provider"
	"vibeforge/server/internal/snapshot"
	"vibeforge/server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) listMedia(c *gin.Context) {
	kind := model.MediaKind(c.Query("type"))
	if kind != "" && !kind.Valid() {
		writeError(c, http.StatusBadRequest, "INVALID_MEDIA_KIND", "Unknown media type", nil)
		return
	}
	items := s.store.MediaLibrary(c.Query("q"), kind)
	writeData(c, http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

type addMediaRequest struct {
	Kind      model.MediaKind `json:"type" binding:"required"`
	Source    string          `json:"source" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Thumbnail string          `json:"thumbnail"`
	Duration  float64         `json:"duration"`
	Size      int64           `json:"size"`
	Tags      []string        `json:"tags"`
}

func (s *Server) addMedia(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req addMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid media payload", nil)
		return
	}
	if !req.Kind.Valid() {
		writeError(c, http.StatusBadRequest, "INVALID_MEDIA_KIND", "Unknown media type", nil)
		return
	}
	item := model.MediaItem{
		ID:        "media-" + uuid.NewString(),
		Kind:      req.Kind,
		Source:    req.Source,
		Name:      req.Name,
		Thumbnail: req.Thumbnail,
		Duration:  req.Duration,
		Size:      req.Size,
		CreatedAt: time.Now().UnixMilli(),
		Tags:      req.Tags,
	}
	s.store.AddMediaItem(item)
	writeData(c, http.StatusCreated, item)
}

func (s *Server) removeMedia(c *gin.Context) {
	s.store.RemoveMediaItem(c.Param("media_id"))
	writeData(c, http.StatusOK, gin.H{"ok": true})
}

const maxUploadBytes = 256 << 20

// uploadMedia pins the uploaded file and registers the gateway URL as a
// library item, so the file is immediately usable as a clip source.
func (s *Server) uploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file field is required", nil)
		return
	}
	defer file.Close()
	if header.Size > maxUploadBytes {
		writeError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds upload limit", nil)
		return
	}
	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read upload", nil)
		return
	}
	if len(payload) > maxUploadBytes {
		writeError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds upload limit", nil)
		return
	}

	result, err := s.uploader.Upload(c.Request.Context(), payload, header.Filename)
	if err != nil {
		writeError(c, http.StatusBadGateway, "UPLOAD_FAILED", "Storage upload failed", nil)
		return
	}

	kind := model.MediaKind(c.PostForm("type"))
	if !kind.Valid() {
		kind = model.MediaVideo
	}
	item := model.MediaItem{
		ID:        "media-" + uuid.NewString(),
		Kind:      kind,
		Source:    result.URL,
		Name:      header.Filename,
		Size:      int64(len(payload)),
		CreatedAt: time.Now().UnixMilli(),
	}
	s.store.AddMediaItem(item)
	writeData(c, http.StatusCreated, gin.H{
		"cid":   result.CID,
		"url":   result.URL,
		"media": item,
	})
}

func (s *Server) listGenerations(c *gin.Context) {
	items := s.store.Generations()
	writeData(c, http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (s *Server) getGeneration(c *gin.Context) {
	gen, ok := s.store.GetGeneration(c.Param("generation_id"))
	if !ok {
		writeError(c, http.StatusNotFound, "GENERATION_NOT_FOUND", "Generation not found", nil)
		return
	}
	writeData(c, http.StatusOK, gen)
}

type startGenerationRequest struct {
	Tool    model.AITool `json:"type" binding:"required"`
	Prompt  string       `json:"prompt" binding:"required"`
	Options struct {
		Size     string  `json:"size"`
		Style    string  `json:"style"`
		Duration float64 `json:"duration"`
		Model    string  `json:"model"`
	} `json:"options"`
}

// startGeneration records the request immediately and runs the adapter in
// the background; clients follow progress on the event stream or by polling
// the generation record.
func (s *Server) startGeneration(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req startGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid generation payload", nil)
		return
	}
	if !req.Tool.Valid() {
		writeError(c, http.StatusBadRequest, "INVALID_TOOL", fmt.Sprintf("unsupported AI tool type: %s", req.Tool), nil)
		return
	}
	gen := model.AIGeneration{
		ID:        "gen-" + uuid.NewString(),
		Tool:      req.Tool,
		Prompt:    req.Prompt,
		Status:    model.GenerationPending,
		Timestamp: time.Now().UnixMilli(),
	}
	s.store.AddGeneration(gen)

	go s.runGeneration(gen.ID, provider.Request{
		Tool:   req.Tool,
		Prompt: req.Prompt,
		Options: provider.Options{
			Size:     req.Options.Size,
			Style:    req.Options.Style,
			Duration: req.Options.Duration,
			Model:    req.Options.Model,
		},
	})

	writeData(c, http.StatusAccepted, gen)
}

func (s *Server) runGeneration(id string, req provider.Request) {
	processing := model.GenerationProcessing
	s.store.UpdateGeneration(id, store.GenerationPatch{Status: &processing})

	ctx, cancel := context.WithTimeout(context.Background(), s.aiTimeout)
	defer cancel()

	result, err := s.ai.Generate(ctx, req)
	if err != nil {
		failed := model.GenerationError
		msg := err.Error()
		s.store.UpdateGeneration(id, store.GenerationPatch{Status: &failed, Error: &msg})
		s.log.Warn("generation failed", "generation_id", id, "tool", req.Tool, "err", err)
		return
	}
	completed := model.GenerationCompleted
	s.store.UpdateGeneration(id, store.GenerationPatch{Status: &completed, Result: &result.Data})
}

type exportVideoRequest struct {
	FPS      *float64 `json:"fps"`
	Duration *float64 `json:"duration"`
	Filename string   `json:"filename"`
}

// exportVideo renders the working composition and pins the artifact.
func (s *Server) exportVideo(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	project, ok := s.store.ActiveProject()
	if !ok {
		writeError(c, http.StatusNotFound, "NO_ACTIVE_PROJECT", "No active project", nil)
		return
	}
	var req exportVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid export payload", nil)
		return
	}
	fps := project.FPS
	if req.FPS != nil {
		fps = *req.FPS
	}
	duration := project.Duration
	if req.Duration != nil {
		duration = *req.Duration
	}
	if fps < 1 || fps > 120 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "fps must be between 1 and 120", nil)
		return
	}
	if duration < 1 || duration > 3600 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "duration must be between 1 and 3600 seconds", nil)
		return
	}

	artifact, err := s.exporter.Export(c.Request.Context(), project.Tracks, project.Resolution, fps, duration)
	if err != nil {
		writeError(c, http.StatusBadGateway, "EXPORT_FAILED", "Render failed", map[string]any{
			"reason": err.Error(),
		})
		return
	}
	filename := req.Filename
	if filename == "" {
		filename = project.Name + ".mp4"
	}
	result, err := s.uploader.Upload(c.Request.Context(), artifact, filename)
	if err != nil {
		writeError(c, http.StatusBadGateway, "UPLOAD_FAILED", "Storage upload failed", nil)
		return
	}
	writeData(c, http.StatusOK, gin.H{
		"cid":      result.CID,
		"url":      result.URL,
		"filename": filename,
		"size":     len(artifact),
	})
}

func (s *Server) listSnapshots(c *gin.Context) {
	items, err := s.snapshots.List(c.Query("project_id"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list snapshots", nil)
		return
	}
	writeData(c, http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

type createSnapshotRequest struct {
	Label string `json:"label"`
}

func (s *Server) createSnapshot(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	project, ok := s.store.ActiveProject()
	if !ok {
		writeError(c, http.StatusNotFound, "NO_ACTIVE_PROJECT", "No active project", nil)
		return
	}
	var req createSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid snapshot payload", nil)
		return
	}
	snap, err := s.snapshots.Save(project, req.Label)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save snapshot", nil)
		return
	}
	writeData(c, http.StatusCreated, snap)
}

func (s *Server) getSnapshot(c *gin.Context) {
	snap, project, err := s.snapshots.Get(c.Param("snapshot_id"))
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(c, http.StatusNotFound, "SNAPSHOT_NOT_FOUND", "Snapshot not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load snapshot", nil)
		return
	}
	writeData(c, http.StatusOK, gin.H{
		"snapshot": snap,
		"project":  project,
	})
}

func (s *Server) deleteSnapshot(c *gin.Context) {
	if err := s.snapshots.Delete(c.Param("snapshot_id")); err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(c, http.StatusNotFound, "SNAPSHOT_NOT_FOUND", "Snapshot not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete snapshot", nil)
		return
	}
	writeData(c, http.StatusOK, gin.H{"ok": true})
}

func (s *Server) restoreSnapshot(c *gin.Context) {
	_, project, err := s.snapshots.Get(c.Param("snapshot_id"))
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(c, http.StatusNotFound, "SNAPSHOT_NOT_FOUND", "Snapshot not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load snapshot", nil)
		return
	}
	s.store.SetActiveProject(&project)
	restored, _ := s.store.ActiveProject()
	writeData(c, http.StatusOK, restored)
}
