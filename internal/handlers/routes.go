package handlers

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"church-hub/internal/ws"
)

// SetupRoutes wires the HTTP surface and the WebSocket endpoint.
func SetupRoutes(presentation *PresentationHandler, songs *SongHandler, midi *MIDIHandler, hub *ws.Hub) http.Handler {
	router := mux.NewRouter()

	// Readiness probe polled by the desktop shell during startup.
	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/presentation/state", presentation.GetState).Methods(http.MethodGet)
	api.HandleFunc("/presentation/state", presentation.UpdateState).Methods(http.MethodPut)
	api.HandleFunc("/presentation/show", presentation.Show).Methods(http.MethodPost)
	api.HandleFunc("/presentation/clear", presentation.Clear).Methods(http.MethodPost)
	api.HandleFunc("/presentation/stop", presentation.Stop).Methods(http.MethodPost)
	api.HandleFunc("/presentation/navigate-queue", presentation.NavigateQueue).Methods(http.MethodPost)
	api.HandleFunc("/presentation/temporary/song", presentation.PresentTemporarySong).Methods(http.MethodPost)
	api.HandleFunc("/presentation/temporary/bible", presentation.PresentTemporaryBible).Methods(http.MethodPost)
	api.HandleFunc("/presentation/temporary/navigate", presentation.NavigateTemporary).Methods(http.MethodPost)
	api.HandleFunc("/presentation/temporary/clear", presentation.ClearTemporary).Methods(http.MethodPost)

	api.HandleFunc("/songs/{id}/opensong", songs.ExportOpenSong).Methods(http.MethodGet)

	api.HandleFunc("/midi/status", midi.GetStatus).Methods(http.MethodGet)

	router.HandleFunc("/ws", hub.HandleWebSocket)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	return handlers.LoggingHandler(os.Stdout, cors(router))
}
