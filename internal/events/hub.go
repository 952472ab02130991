package events

import (
	"sync"

	"vibeforge/server/internal/model"

	"github.com/google/uuid"
)

// Hub fans state events out to every subscriber. There is one broadcast
// domain: all editor state and transport events flow through it.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]chan model.StateEvent
}

func NewHub() *Hub {
	return &Hub{
		subs: map[string]chan model.StateEvent{},
	}
}

func (h *Hub) Subscribe(buf int) (string, <-chan model.StateEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subID := uuid.NewString()
	ch := make(chan model.StateEvent, buf)
	h.subs[subID] = ch

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		c, ok := h.subs[subID]
		if !ok {
			return
		}
		delete(h.subs, subID)
		close(c)
	}
	return subID, ch, unsubscribe
}

func (h *Hub) Publish(evt model.StateEvent) {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// Drop for slow subscribers to keep publishers non-blocking.
		}
	}
}
