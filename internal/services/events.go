package services

import (
	"sync"
)

// EventType identifies the kind of real-time update.
type EventType string

const (
	EventReportMerged   EventType = "report_merged"
	EventImportProgress EventType = "import_progress"
	EventImportDone     EventType = "import_done"
)

// Event represents a real-time pipeline status update.
type Event struct {
	Type   EventType      `json:"type"`
	FormID string         `json:"form_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// EventService manages SSE client connections and event broadcasting.
type EventService struct {
	clients map[string]chan Event
	mu      sync.RWMutex
}

// NewEventService creates a new event hub instance
func NewEventService() *EventService {
	return &EventService{
		clients: make(map[string]chan Event),
	}
}

// Subscribe registers a new client and returns a channel for receiving events
func (h *EventService) Subscribe(clientID string) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Create buffered channel to prevent blocking
	ch := make(chan Event, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client from the hub
func (h *EventService) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients
func (h *EventService) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		// Non-blocking send - drop event if client buffer is full
		select {
		case ch <- event:
		default:
			// Client is slow, skip this event
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventService) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
