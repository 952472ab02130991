package store

import (
	"encoding/json"
	"fmt"

	"vibeforge/server/internal/model"
)

// ExportProject serializes the working project losslessly, including track
// and clip order.
func (s *ProjectStore) ExportProject() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", ErrNoProject
	}
	raw, err := json.Marshal(s.current)
	if err != nil {
		return "", fmt.Errorf("marshal project: %w", err)
	}
	return string(raw), nil
}

// ImportProject replaces the working project with a deserialized one. A
// payload that fails to parse or violates project invariants is rejected
// wholesale and the current project is left untouched.
func (s *ProjectStore) ImportProject(data string) error {
	var p model.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	s.mu.Lock()
	cp := p.Clone()
	s.current = &cp
	s.projects = append([]model.Project{p.Clone()}, s.projects...)
	s.selectedClip = ""
	s.mu.Unlock()

	s.publish(model.EventProjectReplaced, map[string]any{"project_id": p.ID})
	return nil
}
