package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) playbackPlay(c *gin.Context) {
	if _, ok := s.store.ActiveProject(); !ok {
		writeError(c, http.StatusNotFound, "NO_ACTIVE_PROJECT", "No active project", nil)
		return
	}
	s.sched.Play()
	playing, position := s.sched.State()
	writeData(c, http.StatusOK, gin.H{"playing": playing, "currentTime": position})
}

func (s *Server) playbackPause(c *gin.Context) {
	s.sched.Pause()
	playing, position := s.sched.State()
	writeData(c, http.StatusOK, gin.H{"playing": playing, "currentTime": position})
}

type seekRequest struct {
	Time float64 `json:"time"`
}

func (s *Server) playbackSeek(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	if _, ok := s.store.ActiveProject(); !ok {
		writeError(c, http.StatusNotFound, "NO_ACTIVE_PROJECT", "No active project", nil)
		return
	}
	var req seekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid seek payload", nil)
		return
	}
	s.sched.Seek(req.Time)
	playing, position := s.sched.State()
	writeData(c, http.StatusOK, gin.H{"playing": playing, "currentTime": position})
}

func (s *Server) playbackState(c *gin.Context) {
	playing, position := s.sched.State()
	writeData(c, http.StatusOK, gin.H{
		"playing":      playing,
		"currentTime":  position,
		"zoom":         s.store.Zoom(),
		"selectedClip": s.store.SelectedClip(),
	})
}

type followerTimeRequest struct {
	Time float64 `json:"time"`
}

// followerTime lets the rendering surface report its local media position;
// the scheduler folds it back into the timeline while paused.
func (s *Server) followerTime(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req followerTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid follower payload", nil)
		return
	}
	s.sched.HandleFollowerTime(req.Time)
	playing, position := s.sched.State()
	writeData(c, http.StatusOK, gin.H{"playing": playing, "currentTime": position})
}

func (s *Server) followerEnded(c *gin.Context) {
	s.sched.HandleFollowerEnded()
	playing, position := s.sched.State()
	writeData(c, http.StatusOK, gin.H{"playing": playing, "currentTime": position})
}
