package api

import (
	"errors"
	"net/http"

	"vibeforge/server/internal/model"
	"vibeforge/server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTrackID() string {
	return "track-" + uuid.NewString()
}

func (s *Server) createProject(c *gin.Context) {
	project := s.store.CreateProject()
	writeData(c, http.StatusCreated, project)
}

func (s *Server) listProjects(c *gin.Context) {
	items := s.store.Projects()
	writeData(c, http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (s *Server) deleteProject(c *gin.Context) {
	s.store.DeleteProject(c.Param("project_id"))
	writeData(c, http.StatusOK, gin.H{"ok": true})
}

func (s *Server) getActiveProject(c *gin.Context) {
	project, ok := s.store.ActiveProject()
	if !ok {
		writeError(c, http.StatusNotFound, "NO_ACTIVE_PROJECT", "No active project", nil)
		return
	}
	writeData(c, http.StatusOK, project)
}

func (s *Server) replaceActiveProject(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var project model.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid project payload", nil)
		return
	}
	if err := project.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_PROJECT", err.Error(), nil)
		return
	}
	s.store.SetActiveProject(&project)
	updated, _ := s.store.ActiveProject()
	writeData(c, http.StatusOK, updated)
}

type patchProjectRequest struct {
	Name       *string           `json:"name"`
	Duration   *float64          `json:"duration"`
	Resolution *model.Resolution `json:"resolution"`
	FPS        *float64          `json:"fps"`
}

func (s *Server) patchActiveProject(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	if _, ok := s.store.ActiveProject(); !ok {
		writeError(c, http.StatusNotFound, "NO_ACTIVE_PROJECT", "No active project", nil)
		return
	}
	var req patchProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid patch payload", nil)
		return
	}
	s.store.UpdateActiveProject(store.ProjectPatch{
		Name:       req.Name,
		Duration:   req.Duration,
		Resolution: req.Resolution,
		FPS:        req.FPS,
	})
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusOK, project)
}

func (s *Server) exportProjectJSON(c *gin.Context) {
	data, err := s.store.ExportProject()
	if err != nil {
		if errors.Is(err, store.ErrNoProject) {
			writeError(c, http.StatusNotFound, "NO_ACTIVE_PROJECT", "No active project", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export project", nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="project.json"`)
	c.Data(http.StatusOK, "application/json", []byte(data))
}

type importProjectRequest struct {
	Data string `json:"data" binding:"required"`
}

func (s *Server) importProjectJSON(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req importProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "data is required", nil)
		return
	}
	if err := s.store.ImportProject(req.Data); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_PROJECT", "Project document rejected", map[string]any{
			"reason": err.Error(),
		})
		return
	}
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusOK, project)
}

type addTrackRequest struct {
	ID     string          `json:"id"`
	Kind   model.TrackKind `json:"type" binding:"required"`
	Name   string          `json:"name" binding:"required"`
	Volume *float64        `json:"volume"`
}

func (s *Server) addTrack(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	if _, ok := s.store.ActiveProject(); !ok {
		writeError(c, http.StatusNotFound, "NO_ACTIVE_PROJECT", "No active project", nil)
		return
	}
	var req addTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid track payload", nil)
		return
	}
	if !req.Kind.Valid() {
		writeError(c, http.StatusBadRequest, "INVALID_TRACK_KIND", "Unknown track type", nil)
		return
	}
	track := model.Track{
		ID:     req.ID,
		Kind:   req.Kind,
		Name:   req.Name,
		Clips:  []model.Clip{},
		Volume: 1,
	}
	if track.ID == "" {
		track.ID = newTrackID()
	}
	if req.Volume != nil {
		track.Volume = *req.Volume
	}
	s.store.AddTrack(track)
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusCreated, gin.H{
		"track_id": track.ID,
		"project":  project,
	})
}

type patchTrackRequest struct {
	Name   *string          `json:"name"`
	Kind   *model.TrackKind `json:"type"`
	Muted  *bool            `json:"muted"`
	Volume *float64         `json:"volume"`
}

func (s *Server) patchTrack(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req patchTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid patch payload", nil)
		return
	}
	s.store.UpdateTrack(c.Param("track_id"), store.TrackPatch{
		Name:   req.Name,
		Kind:   req.Kind,
		Muted:  req.Muted,
		Volume: req.Volume,
	})
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusOK, project)
}

func (s *Server) removeTrack(c *gin.Context) {
	s.store.RemoveTrack(c.Param("track_id"))
	project, _ := s.store.ActiveProject()
	writeData(c, http.StatusOK, project)
}

type selectionRequest struct {
	ClipID string `json:"clipId"`
}

func (s *Server) setSelection(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid selection payload", nil)
		return
	}
	s.store.SelectClip(req.ClipID)
	writeData(c, http.StatusOK, gin.H{"clipId": s.store.SelectedClip()})
}

type zoomRequest struct {
	Zoom float64 `json:"zoom" binding:"required,gt=0"`
}

func (s *Server) setZoom(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req zoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "zoom must be positive", nil)
		return
	}
	s.store.SetZoom(req.Zoom)
	writeData(c, http.StatusOK, gin.H{"zoom": s.store.Zoom()})
}
