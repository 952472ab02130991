package store

import (
	"strings"

	"vibeforge/server/internal/model"
)

// AddMediaItem registers a reusable asset in the library.
func (s *ProjectStore) AddMediaItem(item model.MediaItem) {
	s.mu.Lock()
	if item.Tags == nil {
		item.Tags = []string{}
	}
	s.library = append(s.library, item)
	s.mu.Unlock()

	s.publish(model.EventMediaAdded, map[string]any{"media_id": item.ID})
}

// RemoveMediaItem deletes a library asset. Clips created from it are
// untouched; they copied its fields.
func (s *ProjectStore) RemoveMediaItem(itemID string) {
	s.mu.Lock()
	kept := s.library[:0]
	for _, it := range s.library {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	s.library = kept
	s.mu.Unlock()

	s.publish(model.EventMediaRemoved, map[string]any{"media_id": itemID})
}

// MediaLibrary lists assets, optionally filtered by a name substring and a
// kind. Empty query and empty kind return everything.
func (s *ProjectStore) MediaLibrary(query string, kind model.MediaKind) []model.MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	out := make([]model.MediaItem, 0, len(s.library))
	for _, it := range s.library {
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) {
			continue
		}
		if kind != "" && it.Kind != kind {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (s *ProjectStore) GetMediaItem(itemID string) (model.MediaItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.library {
		if it.ID == itemID {
			return it, true
		}
	}
	return model.MediaItem{}, false
}

// AddGeneration prepends an AI generation record to the history. History is
// retained in full; Generations caps what is handed out for display.
func (s *ProjectStore) AddGeneration(gen model.AIGeneration) {
	s.mu.Lock()
	s.generations = append([]model.AIGeneration{gen}, s.generations...)
	s.mu.Unlock()

	s.publish(model.EventGeneration, map[string]any{"generation_id": gen.ID, "status": gen.Status})
}

type GenerationPatch struct {
	Status *model.GenerationStatus
	Result *string
	Error  *string
}

// UpdateGeneration merges lifecycle fields into the matching record.
func (s *ProjectStore) UpdateGeneration(id string, patch GenerationPatch) {
	s.mu.Lock()
	var status model.GenerationStatus
	found := false
	for i := range s.generations {
		if s.generations[i].ID != id {
			continue
		}
		if patch.Status != nil {
			s.generations[i].Status = *patch.Status
		}
		if patch.Result != nil {
			s.generations[i].Result = *patch.Result
		}
		if patch.Error != nil {
			s.generations[i].Error = *patch.Error
		}
		status = s.generations[i].Status
		found = true
		break
	}
	s.mu.Unlock()

	if found {
		s.publish(model.EventGeneration, map[string]any{"generation_id": id, "status": status})
	}
}

// Generations returns the newest records up to the display cap.
func (s *ProjectStore) Generations() []model.AIGeneration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.generations)
	if n > s.historyCap {
		n = s.historyCap
	}
	out := make([]model.AIGeneration, n)
	copy(out, s.generations[:n])
	return out
}

func (s *ProjectStore) GetGeneration(id string) (model.AIGeneration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.generations {
		if g.ID == id {
			return g, true
		}
	}
	return model.AIGeneration{}, false
}
