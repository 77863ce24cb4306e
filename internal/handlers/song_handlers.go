package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"church-hub/internal/opensong"
	"church-hub/internal/services"
)

// SongHandler handles HTTP requests for song export
type SongHandler struct {
	songs *services.SongService
}

// NewSongHandler creates a new song handler
func NewSongHandler(songs *services.SongService) *SongHandler {
	return &SongHandler{
		songs: songs,
	}
}

// ExportOpenSong renders a song as OpenSong XML
// GET /api/songs/{id}/opensong
func (h *SongHandler) ExportOpenSong(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	song, err := h.songs.GetSong(id)
	if err != nil {
		if services.IsNotFound(err) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		log.Printf("Failed to load song %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	songSlides, err := h.songs.GetSlides(id)
	if err != nil {
		log.Printf("Failed to load slides for song %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	data, err := opensong.Export(song, songSlides)
	if err != nil {
		log.Printf("Failed to export song %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(data)
}
