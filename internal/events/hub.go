package events

import (
	"sync"

	"github.com/yourusername/jobscout-api/internal/model"
)

const subscriberBuffer = 32

// Hub fans analysis events out to subscribers
type Hub struct {
	mu      sync.Mutex
	clients map[chan model.AnalysisEvent]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan model.AnalysisEvent]struct{})}
}

// Subscribe returns a buffered channel of events. The channel is closed by
// Unsubscribe or Close. Subscribing to a closed hub yields a closed channel.
func (h *Hub) Subscribe() chan model.AnalysisEvent {
	ch := make(chan model.AnalysisEvent, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.clients[ch] = struct{}{}
	return ch
}

func (h *Hub) Unsubscribe(ch chan model.AnalysisEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	close(ch)
}

// Publish never blocks. A full subscriber misses intermediate events, but
// analysis.finished always lands: the oldest queued event makes room for it.
func (h *Hub) Publish(evt model.AnalysisEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	terminal := evt.Type == model.EventAnalysisFinished
	for ch := range h.clients {
		select {
		case ch <- evt:
			continue
		default:
		}
		if !terminal {
			continue // drop if slow
		}
		// only Publish sends and it holds the lock, so one receive frees a slot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- evt:
		default:
		}
	}
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

// Subscribers returns the number of connected subscribers
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
