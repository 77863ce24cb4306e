package handlers

import (
	"encoding/json"
	"net/http"

	"church-hub/internal/models"
	"church-hub/internal/services"
)

// MIDIHandler handles HTTP requests for MIDI device status
type MIDIHandler struct {
	midi *services.MIDIService
}

// NewMIDIHandler creates a new MIDI handler
func NewMIDIHandler(midi *services.MIDIService) *MIDIHandler {
	return &MIDIHandler{
		midi: midi,
	}
}

// MIDIStatusResponse reports connectivity and the known device list
type MIDIStatusResponse struct {
	Connected bool                `json:"connected"`
	Devices   []models.MIDIDevice `json:"devices"`
}

// GetStatus returns current MIDI connectivity and devices
// GET /api/midi/status
func (h *MIDIHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	devices := h.midi.Devices()
	if devices == nil {
		devices = []models.MIDIDevice{}
	}

	response := MIDIStatusResponse{
		Connected: h.midi.Connected(),
		Devices:   devices,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
