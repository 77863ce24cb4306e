package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-hub/internal/db"
	"church-hub/internal/models"
	"church-hub/internal/services"
	"church-hub/internal/ws"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	database, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// One connection, or each pooled connection would see its own empty
	// in-memory database.
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.CreateTables(database))
	seed(t, database)

	songService := services.NewSongService(database)
	queueService := services.NewQueueService(database)
	bibleService := services.NewBibleService(database)
	midiService := services.NewMIDIService(nil)
	presentationService := services.NewPresentationService(songService, queueService, bibleService)

	hub := ws.NewHub(midiService)
	presentationService.SetPublisher(hub)
	go hub.Run()

	router := SetupRoutes(
		NewPresentationHandler(presentationService),
		NewSongHandler(songService),
		NewMIDIHandler(midiService),
		hub,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func seed(t *testing.T, database *sql.DB) {
	t.Helper()
	statements := []struct {
		query string
		args  []interface{}
	}{
		{`INSERT INTO songs (id, title, author) VALUES (?, ?, ?)`, []interface{}{"song-1", "Amazing Grace", "John Newton"}},
		{`INSERT INTO song_slides (id, song_id, content, sort_order, label) VALUES (?, ?, ?, ?, ?)`,
			[]interface{}{"s1", "song-1", "<p>Amazing grace</p>", 0, "V1"}},
		{`INSERT INTO song_slides (id, song_id, content, sort_order, label) VALUES (?, ?, ?, ?, ?)`,
			[]interface{}{"s2", "song-1", "<p>How sweet the sound</p>", 1, "V2"}},
		{`INSERT INTO queue_items (id, position, type, title, song_id) VALUES (?, ?, ?, ?, ?)`,
			[]interface{}{"q1", 0, "song", "Amazing Grace", "song-1"}},
		{`INSERT INTO bible_verses (id, translation_id, translation_abbreviation, book_id, book_code, book_name, chapter, verse_number, text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{"v1", "kjv", "KJV", "john", "JHN", "John", 3, 16, "For God so loved the world"}},
		{`INSERT INTO bible_verses (id, translation_id, translation_abbreviation, book_id, book_code, book_name, chapter, verse_number, text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{"v2", "kjv", "KJV", "john", "JHN", "John", 3, 17, "For God sent not his Son"}},
	}
	for _, stmt := range statements {
		_, err := database.Exec(stmt.query, stmt.args...)
		require.NoError(t, err)
	}
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data := []byte("{}")
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeState(t *testing.T, resp *http.Response) models.PresentationState {
	t.Helper()
	defer resp.Body.Close()
	var state models.PresentationState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	return state
}

func TestPing(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))
}

func TestGetStateInitiallyBlank(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/api/presentation/state")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeState(t, resp)
	assert.False(t, state.IsPresenting)
	assert.Nil(t, state.TemporaryContent)
}

func TestPresentTemporarySongRoundTrip(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/presentation/temporary/song", models.PresentSongInput{SongID: "song-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeState(t, resp)
	require.NotNil(t, state.TemporaryContent)
	require.NotNil(t, state.TemporaryContent.Song)
	assert.Equal(t, "Amazing Grace", state.TemporaryContent.Song.Title)
	assert.Len(t, state.TemporaryContent.Song.Slides, 2)

	// HTTP-fetched state must be shape-identical to the mutation response.
	getResp, err := http.Get(server.URL + "/api/presentation/state")
	require.NoError(t, err)
	fetched := decodeState(t, getResp)
	assert.Equal(t, state, fetched)
}

func TestPresentMissingSongIs404(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/presentation/temporary/song", models.PresentSongInput{SongID: "missing"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var payload ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Contains(t, payload.Error, "missing")
}

func TestNavigateQueueValidation(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/presentation/navigate-queue", map[string]string{"direction": "sideways"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNavigateQueueWithNothingActiveIsBenign(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/presentation/navigate-queue", models.NavigateQueueInput{Direction: models.DirectionNext})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeState(t, resp)
	assert.Nil(t, state.CurrentQueueItemID)
}

func TestUpdateStateAndShowClear(t *testing.T) {
	server := testServer(t)

	q1, s1 := "q1", "s1"
	resp := postPut(t, server.URL+"/api/presentation/state", models.UpdateStateInput{
		CurrentQueueItemID: &q1,
		CurrentSongSlideID: &s1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeState(t, resp)
	require.NotNil(t, state.CurrentQueueItemID)

	resp = postJSON(t, server.URL+"/api/presentation/clear", nil)
	state = decodeState(t, resp)
	assert.True(t, state.IsHidden)

	resp = postJSON(t, server.URL+"/api/presentation/show", nil)
	state = decodeState(t, resp)
	assert.False(t, state.IsHidden)
	assert.Equal(t, "s1", *state.CurrentSongSlideID)
}

func TestUpdateStateRejectsUnknownQueueItem(t *testing.T) {
	server := testServer(t)

	bogus := "missing"
	resp := postPut(t, server.URL+"/api/presentation/state", models.UpdateStateInput{CurrentQueueItemID: &bogus})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPresentBibleAndNavigate(t *testing.T) {
	server := testServer(t)

	resp := postJSON(t, server.URL+"/api/presentation/temporary/bible", models.PresentBibleInput{
		TranslationID: "kjv", BookID: "john", Chapter: 3, VerseIndex: 16,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeState(t, resp)
	require.NotNil(t, state.TemporaryContent)
	require.NotNil(t, state.TemporaryContent.Bible)
	assert.Equal(t, "John 3:16", state.TemporaryContent.Bible.Reference)

	resp = postJSON(t, server.URL+"/api/presentation/temporary/navigate", models.NavigateTemporaryInput{
		Direction:        models.DirectionNext,
		RequestTimestamp: state.UpdatedAt + 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decodeState(t, resp)
	assert.Equal(t, "John 3:17", state.TemporaryContent.Bible.Reference)
}

func TestStopResets(t *testing.T) {
	server := testServer(t)

	postJSON(t, server.URL+"/api/presentation/temporary/song", models.PresentSongInput{SongID: "song-1"}).Body.Close()

	resp := postJSON(t, server.URL+"/api/presentation/stop", nil)
	state := decodeState(t, resp)
	assert.Nil(t, state.TemporaryContent)
	assert.False(t, state.IsPresenting)
}

func TestExportOpenSongEndpoint(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/api/songs/song-1/opensong")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "xml")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<title>Amazing Grace</title>")
	assert.Contains(t, string(body), "<presentation>V1 V2</presentation>")
}

func TestExportMissingSongIs404(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/api/songs/missing/opensong")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMIDIStatus(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/api/midi/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status MIDIStatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status.Connected)
	assert.Empty(t, status.Devices)
}

func postPut(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}
