package api

import (
	"log/slog"
	"time"

	"vibeforge/server/internal/auth"
	"vibeforge/server/internal/events"
	"vibeforge/server/internal/ipfs"
	"vibeforge/server/internal/playback"
	"vibeforge/server/internal/provider"
	"vibeforge/server/internal/render"
	"vibeforge/server/internal/snapshot"
	"vibeforge/server/internal/store"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Auth      *auth.Service
	Store     *store.ProjectStore
	Scheduler *playback.Scheduler
	AI        provider.Adapter
	Uploader  ipfs.Uploader
	Exporter  render.Exporter
	Snapshots *snapshot.Store
	Hub       *events.Hub
	Log       *slog.Logger
	AITimeout time.Duration
}

type Server struct {
	auth      *auth.Service
	store     *store.ProjectStore
	sched     *playback.Scheduler
	ai        provider.Adapter
	uploader  ipfs.Uploader
	exporter  render.Exporter
	snapshots *snapshot.Store
	hub       *events.Hub
	log       *slog.Logger
	aiTimeout time.Duration
}

func NewServer(d Deps) *Server {
	if d.AITimeout <= 0 {
		d.AITimeout = 2 * time.Minute
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Server{
		auth:      d.Auth,
		store:     d.Store,
		sched:     d.Scheduler,
		ai:        d.AI,
		uploader:  d.Uploader,
		exporter:  d.Exporter,
		snapshots: d.Snapshots,
		hub:       d.Hub,
		log:       d.Log,
		aiTimeout: d.AITimeout,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(s.log))

	v1 := r.Group("/api/v1")
	v1.GET("/healthz", func(c *gin.Context) {
		writeData(c, 200, gin.H{"status": "ok"})
	})

	v1.POST("/auth/login", s.login)
	v1.POST("/auth/refresh", s.refresh)

	authed := v1.Group("")
	authed.Use(AuthMiddleware(s.auth))
	{
		authed.POST("/auth/logout", s.logout)
		authed.GET("/me", s.me)

		authed.POST("/projects", s.createProject)
		authed.GET("/projects", s.listProjects)
		authed.DELETE("/projects/:project_id", s.deleteProject)

		authed.GET("/project", s.getActiveProject)
		authed.PUT("/project", s.replaceActiveProject)
		authed.PATCH("/project", s.patchActiveProject)
		authed.GET("/project/export", s.exportProjectJSON)
		authed.POST("/project/import", s.importProjectJSON)

		authed.POST("/project/tracks", s.addTrack)
		authed.PATCH("/project/tracks/:track_id", s.patchTrack)
		authed.DELETE("/project/tracks/:track_id", s.removeTrack)

		authed.POST("/project/tracks/:track_id/clips", s.addClip)
		authed.PATCH("/project/tracks/:track_id/clips/:clip_id", s.patchClip)
		authed.DELETE("/project/tracks/:track_id/clips/:clip_id", s.removeClip)
		authed.POST("/project/tracks/:track_id/paste", s.pasteClip)
		authed.POST("/project/clips/:clip_id/move", s.moveClip)
		authed.POST("/project/clips/:clip_id/copy", s.copyClip)

		authed.PUT("/project/selection", s.setSelection)
		authed.PUT("/project/zoom", s.setZoom)

		authed.POST("/playback/play", s.playbackPlay)
		authed.POST("/playback/pause", s.playbackPause)
		authed.POST("/playback/seek", s.playbackSeek)
		authed.GET("/playback/state", s.playbackState)
		authed.POST("/playback/follower/time", s.followerTime)
		authed.POST("/playback/follower/ended", s.followerEnded)

		authed.GET("/media", s.listMedia)
		authed.POST("/media", s.addMedia)
		authed.DELETE("/media/:media_id", s.removeMedia)
		authed.POST("/media/upload", s.uploadMedia)

		authed.GET("/ai/generations", s.listGenerations)
		authed.GET("/ai/generations/:generation_id", s.getGeneration)
		authed.POST("/ai/generations", s.startGeneration)

		authed.POST("/export", s.exportVideo)

		authed.GET("/snapshots", s.listSnapshots)
		authed.POST("/snapshots", s.createSnapshot)
		authed.GET("/snapshots/:snapshot_id", s.getSnapshot)
		authed.DELETE("/snapshots/:snapshot_id", s.deleteSnapshot)
		authed.POST("/snapshots/:snapshot_id/restore", s.restoreSnapshot)

		authed.GET("/events", s.streamEvents)
	}

	return r
}
