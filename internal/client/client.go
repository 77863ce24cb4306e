// Package client implements a display/control surface talking to a
// church-hub server: it mirrors the authoritative presentation state from
// snapshot pushes and issues mutations as plain HTTP round trips.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"church-hub/internal/models"
	"church-hub/internal/ws"
)

const (
	// Fixed reconnect delay, no backoff or jitter: the expected topology is
	// a handful of LAN clients, not internet-scale fan-out.
	reconnectDelay = 3 * time.Second

	keepaliveInterval = 30 * time.Second
)

// Client mirrors server state for one display or control surface.
//
// Mutations are not applied optimistically: each one is an RPC, and the
// local view changes only when the subsequent snapshot push arrives. The
// server's updatedAt is authoritative; any snapshot older than the one
// already held is discarded.
type Client struct {
	baseURL string
	name    string
	version string
	httpc   *http.Client

	mu      sync.Mutex
	state   *models.PresentationState
	running bool
	stop    chan struct{}
	onState func(*models.PresentationState)
}

// New creates a client for the server at baseURL (e.g. "http://127.0.0.1:3000").
func New(baseURL, name, version string) *Client {
	return &Client{
		baseURL: baseURL,
		name:    name,
		version: version,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// OnState registers the render callback, invoked for every accepted snapshot.
func (c *Client) OnState(fn func(*models.PresentationState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = fn
}

// State returns the last accepted snapshot, or nil before the first one.
func (c *Client) State() *models.PresentationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil
	}
	return c.state.Clone()
}

// Start launches the connect loop. The client reconnects with a fixed delay
// until Stop is called.
func (c *Client) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.mu.Unlock()

	go c.run()
}

// Stop ends the connect loop.
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stop)
}

func (c *Client) run() {
	for {
		select {
		case <-c.stopChan():
			return
		default:
		}

		if err := c.runConnection(); err != nil {
			log.Printf("Connection error: %v, reconnecting in %s", err, reconnectDelay)
		} else {
			log.Printf("Connection closed, reconnecting in %s", reconnectDelay)
		}

		select {
		case <-c.stopChan():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) stopChan() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop
}

func (c *Client) wsURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"
	return u.String(), nil
}

// runConnection dials, registers, and consumes pushes until the socket
// drops. On (re)connect the server immediately pushes a full snapshot, so no
// history is needed: that snapshot supersedes everything sent before the drop.
func (c *Client) runConnection() error {
	target, err := c.wsURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()
	log.Printf("Connected to %s", target)

	register, err := ws.Marshal(ws.MessageRegister, ws.RegisterPayload{Name: c.name, Version: c.version})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, register); err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go c.keepalive(conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		c.handleMessage(data)
	}
}

func (c *Client) keepalive(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	ping, err := ws.Marshal(ws.MessagePing, nil)
	if err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-c.stopChan():
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var env ws.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("Dropping malformed message: %v", err)
		return
	}
	switch env.Type {
	case ws.MessagePresentationState:
		var state models.PresentationState
		if err := json.Unmarshal(env.Payload, &state); err != nil {
			log.Printf("Dropping malformed state snapshot: %v", err)
			return
		}
		c.applySnapshot(&state)
	case ws.MessagePong, ws.MessageMIDIMessage, ws.MessageMIDIConnectionStatus, ws.MessageMIDIDevices:
		// Not rendered by this surface.
	default:
		log.Printf("Dropping unknown message type %q", env.Type)
	}
}

// applySnapshot accepts a snapshot unless one at least as new is already
// held. An in-flight push that raced a newer one must not roll the view back.
func (c *Client) applySnapshot(state *models.PresentationState) {
	c.mu.Lock()
	if c.state != nil && state.UpdatedAt < c.state.UpdatedAt {
		log.Printf("Dropping stale snapshot (%d < %d)", state.UpdatedAt, c.state.UpdatedAt)
		c.mu.Unlock()
		return
	}
	c.state = state
	callback := c.onState
	snapshot := state.Clone()
	c.mu.Unlock()

	if callback != nil {
		callback(snapshot)
	}
}

// Show requests the screen be unhidden.
func (c *Client) Show() error {
	return c.post("/api/presentation/show", nil)
}

// Clear requests a blackout that preserves the cursors.
func (c *Client) Clear() error {
	return c.post("/api/presentation/clear", nil)
}

// Stop requests a full reset to the blank state.
func (c *Client) StopPresentation() error {
	return c.post("/api/presentation/stop", nil)
}

// NavigateQueue requests a queue navigation step.
func (c *Client) NavigateQueue(direction models.Direction) error {
	return c.post("/api/presentation/navigate-queue", models.NavigateQueueInput{Direction: direction})
}

// NavigateTemporary requests a temporary-content navigation step, stamped
// with the current time so the server can drop it if a newer request has
// already been applied.
func (c *Client) NavigateTemporary(direction models.Direction) error {
	return c.post("/api/presentation/temporary/navigate", models.NavigateTemporaryInput{
		Direction:        direction,
		RequestTimestamp: time.Now().UnixMilli(),
	})
}

// PresentSong requests an ad-hoc song presentation.
func (c *Client) PresentSong(input models.PresentSongInput) error {
	return c.post("/api/presentation/temporary/song", input)
}

// PresentBible requests an ad-hoc verse presentation.
func (c *Client) PresentBible(input models.PresentBibleInput) error {
	return c.post("/api/presentation/temporary/bible", input)
}

// ClearTemporary requests the temporary override be dropped.
func (c *Client) ClearTemporary() error {
	return c.post("/api/presentation/temporary/clear", nil)
}

// FetchState fetches the current state over HTTP. The shape is identical to
// the WebSocket push, so the result feeds the same rendering path.
func (c *Client) FetchState() (*models.PresentationState, error) {
	resp, err := c.httpc.Get(c.baseURL + "/api/presentation/state")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var state models.PresentationState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, err
	}
	return &state, nil
}

// post issues one mutation RPC. The response body carries the resulting
// state but is deliberately not applied here; the view updates from the
// snapshot push that follows.
func (c *Client) post(path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader([]byte("{}"))
	}

	resp, err := c.httpc.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request %s failed: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(data))
	}
	return nil
}
