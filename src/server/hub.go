package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub fans controller frames out to websocket clients. It is the renderer of
// the sync controller: Render stores the frame as latest state and queues it
// for broadcast; new clients receive the latest frame on connect.
// -----------------------------------------------------------------------------

type Hub struct {
	Logger *logger.Logger

	// OnCommand executes a client command; set by the dashboard server.
	OnCommand func(ctx context.Context, cmd models.MDashboardCommand) error

	clients     map[*Client]struct{}
	clientCount atomic.Int32
	broadcast   chan models.MDashboardFrame
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}

	latest     *models.MDashboardFrame
	stateMutex sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		Logger:  log,
		clients: make(map[*Client]struct{}),
		// Buffered so Render never stalls the controller loop
		broadcast:  make(chan models.MDashboardFrame, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------
// Hub loop
// -----------------------------------------------------------------------------

// Run is the main Hub loop; it returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.clientCount.Add(1)
			h.Logger.Debug("Client %s connected (%d total)", client.id, len(h.clients))
			if frame, ok := h.Latest(); ok {
				if payload, err := json.Marshal(frame); err == nil {
					client.enqueue(payload)
				}
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}

		case frame := <-h.broadcast:
			payload, err := json.Marshal(frame)
			if err != nil {
				h.Logger.Error("Encoding %s frame: %v", frame.Type, err)
				continue
			}
			for client := range h.clients {
				if !client.enqueue(payload) {
					h.Logger.Warning("Client %s too slow, disconnecting", client.id)
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	h.clientCount.Add(-1)
	client.close()
}

// -----------------------------------------------------------------------------

// Render implements interfaces.IRenderer.
func (h *Hub) Render(frame models.MDashboardFrame) {
	h.stateMutex.Lock()
	h.latest = &frame
	h.stateMutex.Unlock()

	select {
	case h.broadcast <- frame:
	default:
		// every frame carries the full series, the next one repairs the gap
		h.Logger.Warning("Broadcast queue full, dropping %s frame (generation %d)", frame.Type, frame.Generation)
	}
}

// Latest returns the last rendered frame.
func (h *Hub) Latest() (models.MDashboardFrame, bool) {
	h.stateMutex.RLock()
	defer h.stateMutex.RUnlock()

	if h.latest == nil {
		return models.MDashboardFrame{}, false
	}
	return *h.latest, true
}

func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (h *Hub) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(h, conn)

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// handleClientMessage runs one command and queues its reply. False ends the
// read loop.
func (h *Hub) handleClientMessage(client *Client, message []byte) bool {
	var cmd models.MDashboardCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		h.Logger.Info("Client %s sent malformed command, disconnecting: %v", client.id, err)
		return false
	}

	reply := models.MCommandReply{Type: "ACK", Command: cmd.Command}
	if h.OnCommand == nil {
		reply = models.MCommandReply{Type: "ERROR", Command: cmd.Command, Error: "unavailable"}
	} else if err := h.OnCommand(context.Background(), cmd); err != nil {
		_, code := statusForCommandError(err)
		reply = models.MCommandReply{Type: "ERROR", Command: cmd.Command, Error: code, Message: err.Error()}
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		h.Logger.Error("Encoding reply: %v", err)
		return true
	}
	client.enqueue(payload)
	return true
}
