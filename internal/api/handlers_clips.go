package api

import (
	"net/http"

	"vibeforge/server/internal/model"
	"vibeforge/server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type addClipRequest struct {
	ID        string           `json:"id"`
	Kind      model.MediaKind  `json:"type" binding:"required"`
	Source    string           `json:"source"`
	StartTime float64          `json:"startTime"`
	Duration  float64          `json:"duration" binding:"required,gt=0"`
	Position  float64          `json:"position"`
	Volume    *float64         `json:"volume"`
	Effects   *model.Effects   `json:"effects"`
	Text      *model.TextStyle `json:"text"`
}

func (s *Server) addClip(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	trackID := c.Param("track_id")
	var req addClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid clip payload", nil)
		return
	}
	if !req.Kind.Valid() {
		writeError(c, http.StatusBadRequest, "INVALID_CLIP_KIND", "Unknown clip type", nil)
		return
	}
	if req.StartTime < 0 || req.Position < 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "startTime and position must be non-negative", nil)
		return
	}
	clip := model.Clip{
		ID:        req.ID,
		Kind:      req.Kind,
		Source:    req.Source,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Position:  req.Position,
		Volume:    req.Volume,
		Effects:   req.Effects,
		Text:      req.Text,
	}
	if clip.ID == "" {
		clip.ID = "clip-" + uuid.NewString()
	}
	s.store.AddClip(trackID, clip)
	if _, _, ok := s.store.FindClip(clip.ID); !ok {
		writeError(c, http.StatusNotFound, "TRACK_NOT_FOUND", "Track not found", nil)
		return
	}
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusCreated, gin.H{
		"clip_id": clip.ID,
		"project": project,
	})
}

type patchClipRequest struct {
	Kind      *model.MediaKind `json:"type"`
	Source    *string          `json:"source"`
	StartTime *float64         `json:"startTime"`
	Duration  *float64         `json:"duration"`
	Position  *float64         `json:"position"`
	Volume    *float64         `json:"volume"`
	Effects   *model.Effects   `json:"effects"`
	Text      *model.TextStyle `json:"text"`
}

func (s *Server) patchClip(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req patchClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid patch payload", nil)
		return
	}
	s.store.UpdateClip(c.Param("track_id"), c.Param("clip_id"), store.ClipPatch{
		Kind:      req.Kind,
		Source:    req.Source,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Position:  req.Position,
		Volume:    req.Volume,
		Effects:   req.Effects,
		Text:      req.Text,
	})
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusOK, project)
}

func (s *Server) removeClip(c *gin.Context) {
	clipID := c.Param("clip_id")
	s.store.RemoveClip(c.Param("track_id"), clipID)
	if s.store.SelectedClip() == clipID {
		s.store.SelectClip("")
	}
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusOK, project)
}

type moveClipRequest struct {
	FromTrackID string  `json:"fromTrackId" binding:"required"`
	ToTrackID   string  `json:"toTrackId" binding:"required"`
	Position    float64 `json:"position"`
}

func (s *Server) moveClip(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	clipID := c.Param("clip_id")
	var req moveClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid move payload", nil)
		return
	}
	if req.Position < 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "position must be non-negative", nil)
		return
	}
	s.store.MoveClip(clipID, req.FromTrackID, req.ToTrackID, req.Position)
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusOK, project)
}

func (s *Server) copyClip(c *gin.Context) {
	clipID := c.Param("clip_id")
	if _, _, ok := s.store.FindClip(clipID); !ok {
		writeError(c, http.StatusNotFound, "CLIP_NOT_FOUND", "Clip not found", nil)
		return
	}
	s.store.CopyClip(clipID)
	writeData(c, http.StatusOK, gin.H{"copied": clipID})
}

type pasteClipRequest struct {
	Position float64 `json:"position"`
}

func (s *Server) pasteClip(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	trackID := c.Param("track_id")
	var req pasteClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid paste payload", nil)
		return
	}
	if req.Position < 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "position must be non-negative", nil)
		return
	}
	clip, ok := s.store.PasteClip(trackID, req.Position)
	if !ok {
		writeError(c, http.StatusConflict, "NOTHING_TO_PASTE", "Clipboard empty or track unknown", nil)
		return
	}
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusCreated, gin.H{
		"clip":    clip,
		"project": project,
	})
}
