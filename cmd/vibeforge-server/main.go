package main

import (
	"log/slog"
	"os"

	"vibeforge/server/internal/api"
	"vibeforge/server/internal/auth"
	"vibeforge/server/internal/config"
	"vibeforge/server/internal/events"
	"vibeforge/server/internal/ipfs"
	"vibeforge/server/internal/playback"
	"vibeforge/server/internal/provider"
	"vibeforge/server/internal/render"
	"vibeforge/server/internal/snapshot"
	"vibeforge/server/internal/store"
	"vibeforge/server/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logger := telemetry.NewLogger()

	hub := events.NewHub()
	st := store.NewProjectStore(hub, cfg.AIHistoryCap)

	authSvc := auth.NewService(st, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err := authSvc.SeedDemoUser("demo@vibeforge.local", "demo123456"); err != nil {
		logger.Error("seed demo user failed", "error", err)
		os.Exit(1)
	}

	snaps, err := snapshot.Open(cfg.SnapshotDBPath)
	if err != nil {
		logger.Error("open snapshot store failed", "error", err, "path", cfg.SnapshotDBPath)
		os.Exit(1)
	}
	defer snaps.Close()

	sched := playback.NewScheduler(st, hub, logger, playback.Config{
		TickInterval:  cfg.TickInterval,
		Quantum:       cfg.TickQuantum,
		SeekTolerance: cfg.SeekTolerance,
	})

	srv := api.NewServer(api.Deps{
		Auth:      authSvc,
		Store:     st,
		Scheduler: sched,
		AI:        provider.NewMockAdapter(),
		Uploader:  ipfs.NewMockUploader(),
		Exporter:  render.NewMockExporter(),
		Snapshots: snaps,
		Hub:       hub,
		Log:       logger,
		AITimeout: cfg.AITimeout,
	})
	router := srv.Router()

	logger.Info("server_start",
		"addr", cfg.Addr,
		"demo_user", "demo@vibeforge.local",
		"snapshot_db", cfg.SnapshotDBPath,
	)
	if err := router.Run(cfg.Addr); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
