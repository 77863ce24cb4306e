package ws

import (
	"log"
	"sync"

	"church-hub/internal/models"
)

// MIDIController receives device-control messages from clients.
type MIDIController interface {
	SetLED(note byte, on bool)
	SetAllLEDs(on bool)
}

// Hub fans every state mutation and device event out to all connected
// observers. Each connection gets the full current-state snapshot
// immediately on open, and a full snapshot again on every mutation, so a
// newly joined or reconnected client is consistent without history. Message
// order is preserved per connection; across a reconnect the fresh snapshot
// supersedes everything sent before the drop.
type Hub struct {
	clients    map[*Conn]bool
	register   chan *Conn
	unregister chan *Conn
	broadcast  chan []byte

	mu        sync.Mutex
	lastState []byte

	midi MIDIController
}

// NewHub creates a new fan-out hub
func NewHub(midi MIDIController) *Hub {
	return &Hub{
		clients:    make(map[*Conn]bool),
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		broadcast:  make(chan []byte, 64),
		midi:       midi,
	}
}

// Run owns the client set. Register, unregister and broadcast are all
// serialized here; nothing else touches h.clients.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
			if snapshot := h.snapshot(); snapshot != nil {
				conn.enqueue(snapshot)
			}
			log.Printf("Client connected: %s (%d total)", conn.id, len(h.clients))

		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.closeSend()
				log.Printf("Client disconnected: %s (%d total)", conn.id, len(h.clients))
			}

		case message := <-h.broadcast:
			for conn := range h.clients {
				if !conn.enqueue(message) {
					// Slow consumer: drop it rather than stall the fan-out.
					delete(h.clients, conn)
					conn.closeSend()
					log.Printf("Client %s dropped: send buffer full", conn.id)
				}
			}
		}
	}
}

// BroadcastState pushes a full presentation-state snapshot to every client.
// Implements the presentation service's publisher port.
func (h *Hub) BroadcastState(state *models.PresentationState) {
	data, err := Marshal(MessagePresentationState, state)
	if err != nil {
		log.Printf("Failed to marshal state snapshot: %v", err)
		return
	}
	h.mu.Lock()
	h.lastState = data
	h.mu.Unlock()
	h.broadcast <- data
}

// BroadcastEvent pushes a device-level event to every client. Implements the
// MIDI service's publisher port.
func (h *Hub) BroadcastEvent(msgType string, payload interface{}) {
	data, err := Marshal(MessageType(msgType), payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", msgType, err)
		return
	}
	h.broadcast <- data
}

func (h *Hub) snapshot() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastState
}

// handleInbound dispatches one decoded client message. Malformed or unknown
// messages never reach here; they are dropped with a log line in the read
// pump.
func (h *Hub) handleInbound(conn *Conn, msg inboundMessage) {
	switch m := msg.(type) {
	case registerInbound:
		log.Printf("Client %s registered as %s %s", conn.id, m.Name, m.Version)
	case pingInbound:
		if data, err := Marshal(MessagePong, nil); err == nil {
			conn.enqueue(data)
		}
	case setLEDInbound:
		if h.midi != nil {
			h.midi.SetLED(m.Note, m.On)
		}
	case setAllLEDsInbound:
		if h.midi != nil {
			h.midi.SetAllLEDs(m.On)
		}
	}
}
