// Package snapshot persists project checkpoints to an embedded sqlite
// database so editing sessions survive a server restart.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vibeforge/server/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("snapshot not found")

type Snapshot struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Label     string `json:"label"`
	CreatedAt int64  `json:"createdAt"`
}

type Store struct {
	conn *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id         TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			label      TEXT NOT NULL,
			payload    TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_project ON snapshots(project_id, created_at DESC);
	`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// Save checkpoints a full project document under a fresh snapshot id.
func (s *Store) Save(project model.Project, label string) (Snapshot, error) {
	payload, err := json.Marshal(project)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode project: %w", err)
	}
	snap := Snapshot{
		ID:        "snap-" + uuid.NewString(),
		ProjectID: project.ID,
		Label:     label,
		CreatedAt: time.Now().UnixMilli(),
	}
	_, err = s.conn.Exec(
		"INSERT INTO snapshots (id, project_id, label, payload, created_at) VALUES (?, ?, ?, ?, ?)",
		snap.ID, snap.ProjectID, snap.Label, string(payload), snap.CreatedAt,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

// Get loads a checkpointed project by snapshot id.
func (s *Store) Get(id string) (Snapshot, model.Project, error) {
	var snap Snapshot
	var payload string
	err := s.conn.QueryRow(
		"SELECT id, project_id, label, payload, created_at FROM snapshots WHERE id = ?", id,
	).Scan(&snap.ID, &snap.ProjectID, &snap.Label, &payload, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, model.Project{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, model.Project{}, fmt.Errorf("query snapshot: %w", err)
	}
	var project model.Project
	if err := json.Unmarshal([]byte(payload), &project); err != nil {
		return Snapshot{}, model.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return snap, project, nil
}

// List returns snapshot metadata newest first, optionally scoped to one
// project. Payloads stay on disk.
func (s *Store) List(projectID string) ([]Snapshot, error) {
	query := "SELECT id, project_id, label, created_at FROM snapshots ORDER BY created_at DESC"
	args := []any{}
	if projectID != "" {
		query = "SELECT id, project_id, label, created_at FROM snapshots WHERE project_id = ? ORDER BY created_at DESC"
		args = append(args, projectID)
	}
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.ProjectID, &snap.Label, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) Delete(id string) error {
	res, err := s.conn.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
