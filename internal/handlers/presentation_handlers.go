package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"church-hub/internal/models"
	"church-hub/internal/services"
)

// PresentationHandler handles HTTP requests for the presentation state machine
type PresentationHandler struct {
	service *services.PresentationService
}

// NewPresentationHandler creates a new presentation handler
func NewPresentationHandler(service *services.PresentationService) *PresentationHandler {
	return &PresentationHandler{
		service: service,
	}
}

// ErrorResponse is the JSON error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetState returns the current presentation state
// GET /api/presentation/state
func (h *PresentationHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeState(w, h.service.State())
}

// UpdateState applies a partial cursor/visibility update
// PUT /api/presentation/state
func (h *PresentationHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	var input models.UpdateStateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	state, err := h.service.UpdateState(input)
	h.respond(w, state, err)
}

// Show unhides the screen without changing content
// POST /api/presentation/show
func (h *PresentationHandler) Show(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ShowSlide()
	h.respond(w, state, err)
}

// Clear blanks the screen, preserving cursors
// POST /api/presentation/clear
func (h *PresentationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ClearSlide()
	h.respond(w, state, err)
}

// Stop resets the presentation to its blank initial state
// POST /api/presentation/stop
func (h *PresentationHandler) Stop(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Stop()
	h.respond(w, state, err)
}

// NavigateQueue advances or retreats the queue cursor
// POST /api/presentation/navigate-queue
func (h *PresentationHandler) NavigateQueue(w http.ResponseWriter, r *http.Request) {
	var input models.NavigateQueueInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if !input.Direction.Valid() {
		http.Error(w, "direction must be \"next\" or \"prev\"", http.StatusBadRequest)
		return
	}

	state, err := h.service.NavigateQueue(input.Direction)
	h.respond(w, state, err)
}

// PresentTemporarySong pushes an ad-hoc song snapshot to the screen
// POST /api/presentation/temporary/song
func (h *PresentationHandler) PresentTemporarySong(w http.ResponseWriter, r *http.Request) {
	var input models.PresentSongInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.SongID == "" {
		http.Error(w, "songId is required", http.StatusBadRequest)
		return
	}

	state, err := h.service.PresentTemporarySong(input)
	h.respond(w, state, err)
}

// PresentTemporaryBible pushes a verse to the screen
// POST /api/presentation/temporary/bible
func (h *PresentationHandler) PresentTemporaryBible(w http.ResponseWriter, r *http.Request) {
	var input models.PresentBibleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if input.TranslationID == "" || input.BookID == "" {
		http.Error(w, "translationId and bookId are required", http.StatusBadRequest)
		return
	}

	state, err := h.service.PresentTemporaryBible(input)
	h.respond(w, state, err)
}

// NavigateTemporary moves the cursor inside temporary content
// POST /api/presentation/temporary/navigate
func (h *PresentationHandler) NavigateTemporary(w http.ResponseWriter, r *http.Request) {
	var input models.NavigateTemporaryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if !input.Direction.Valid() {
		http.Error(w, "direction must be \"next\" or \"prev\"", http.StatusBadRequest)
		return
	}

	state, err := h.service.NavigateTemporary(input)
	h.respond(w, state, err)
}

// ClearTemporary drops the temporary-content override
// POST /api/presentation/temporary/clear
func (h *PresentationHandler) ClearTemporary(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.ClearTemporaryContent()
	h.respond(w, state, err)
}

// respond maps the service result onto the HTTP surface: not-found is 404,
// no-content navigation is a benign 200 with the unchanged state, anything
// else is 500.
func (h *PresentationHandler) respond(w http.ResponseWriter, state *models.PresentationState, err error) {
	if err == nil {
		writeState(w, state)
		return
	}
	if services.IsBenign(err) {
		writeState(w, h.service.State())
		return
	}
	if services.IsNotFound(err) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	log.Printf("Presentation mutation failed: %v", err)
	writeError(w, http.StatusInternalServerError, err)
}

func writeState(w http.ResponseWriter, state *models.PresentationState) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}
