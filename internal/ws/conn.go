package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Control surfaces and display windows connect from arbitrary local
	// origins (desktop shell, browser tabs on the LAN).
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Conn is one connected observer. The hub owns registration; the two pumps
// own all reads and writes on the underlying socket.
type Conn struct {
	id   string
	hub  *Hub
	sock *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// enqueue queues a message without blocking. Reports false when the buffer
// is full or the connection has been dropped. The read pump can still reply
// to inbound messages after the hub drops the connection, so enqueue and
// closeSend synchronize on the same mutex.
func (c *Conn) enqueue(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend marks the connection dropped and closes the send channel, ending
// the write pump. Called only from the hub's Run loop.
func (c *Conn) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// HandleWebSocket upgrades an HTTP request and starts the connection pumps.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sock, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := &Conn{
		id:   uuid.NewString(),
		hub:  h,
		sock: sock,
		send: make(chan []byte, sendBufferSize),
	}
	h.register <- conn

	go conn.writePump()
	go conn.readPump()
}

// readPump reads client messages until the socket closes. Malformed inbound
// messages are dropped with a log line, never propagated.
func (c *Conn) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.sock.Close()
	}()

	c.sock.SetReadLimit(maxMessageSize)
	c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		c.sock.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Client %s read error: %v", c.id, err)
			}
			return
		}
		msg, err := decodeInbound(data)
		if err != nil {
			log.Printf("Client %s sent bad message, dropping: %v", c.id, err)
			continue
		}
		c.hub.handleInbound(c, msg)
	}
}

// writePump writes queued messages and protocol pings until the send channel
// closes.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.sock.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.sock.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
