package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
)

// Client represents a WebSocket client subscribed to one submission
type Client struct {
	SubmissionID string
	Conn         *websocket.Conn
	Send         chan []byte

	mu     sync.Mutex
	closed bool
}

// trySend delivers without blocking. It reports false when the client is
// closed or its buffer is full; the hub evicts such clients.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// close shuts the send channel exactly once. The reader loop may race a
// hub-side eviction, so the closed flag guards both.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by submission ID
	clients map[string]map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Broadcast messages to submission subscribers
	broadcast chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	SubmissionID string
	Message      []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.SubmissionID] == nil {
				h.clients[client.SubmissionID] = make(map[*Client]bool)
			}
			h.clients[client.SubmissionID][client] = true
			h.mu.Unlock()
			log.Printf("Client registered for submission %s", client.SubmissionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SubmissionID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					client.close()
					if len(clients) == 0 {
						delete(h.clients, client.SubmissionID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("Client unregistered from submission %s", client.SubmissionID)

		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[msg.SubmissionID]; ok {
				for client := range clients {
					if !client.trySend(msg.Message) {
						client.close()
						delete(clients, client)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.SubmissionID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastStatus sends a process-state update to all submission subscribers
func (h *Hub) BroadcastStatus(submissionID string, state model.ProcessState) {
	msg := model.WSStatusMessage{
		Type:         model.WSMessageTypeStatus,
		SubmissionID: submissionID,
		Phase:        state.Phase,
		StatusText:   state.StatusText,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal status message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		SubmissionID: submissionID,
		Message:      data,
	}
}

// BroadcastComplete signals terminal success and where to navigate
func (h *Hub) BroadcastComplete(submissionID, redirect string) {
	msg := model.WSCompleteMessage{
		Type:         model.WSMessageTypeComplete,
		SubmissionID: submissionID,
		Redirect:     redirect,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal complete message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		SubmissionID: submissionID,
		Message:      data,
	}
}

// BroadcastError sends an error message to all submission subscribers
func (h *Hub) BroadcastError(submissionID string, code, message string) {
	msg := model.WSErrorMessage{
		Type:         model.WSMessageTypeError,
		SubmissionID: submissionID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal error message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		SubmissionID: submissionID,
		Message:      data,
	}
}

// StatusFrame marshals the catch-up frame a new subscriber receives before
// any broadcasts: the submission's current state, in the same shape as
// later status events.
func StatusFrame(submissionID string, state model.ProcessState) []byte {
	data, err := json.Marshal(model.WSStatusMessage{
		Type:         model.WSMessageTypeStatus,
		SubmissionID: submissionID,
		Phase:        state.Phase,
		StatusText:   state.StatusText,
	})
	if err != nil {
		return nil
	}
	return data
}

// HandleConnection handles a WebSocket connection for one submission. The
// initial frame, if any, is sent before the client starts receiving
// broadcasts so subscribers always see the current state first.
func (h *Hub) HandleConnection(c *websocket.Conn, submissionID string, initial []byte) {
	client := &Client{
		SubmissionID: submissionID,
		Conn:         c,
		Send:         make(chan []byte, 256),
	}

	if initial != nil {
		if err := c.WriteMessage(websocket.TextMessage, initial); err != nil {
			return
		}
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Handle client messages (ping/pong)
		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.trySend(data)
		}
	}
}
