package socket

import (
	"encoding/json"
	"sync"

	presencesvc "collabdocs/internal/presence/service"
	"collabdocs/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	HeartbeatType = "HEARTBEAT" // Client signals it is still viewing the document
	RosterType    = "ROSTER"    // Server pushes the current live-viewer list
)

type WSMessage struct {
	Type    string          `json:"type"`
	DocID   string          `json:"document_id"`
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

// HeartbeatPayload is what a client attaches to a HEARTBEAT frame.
type HeartbeatPayload struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Hub fans live-roster updates out to every websocket client viewing a
// document. Heartbeats are persisted through the presence service, so the
// roster a client receives here is the same one the REST listing returns.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	presence   *presencesvc.PresenceService
	mu         sync.Mutex
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	DocID  string
	UserID string
	Send   chan []byte
}

func NewHub(presence *presencesvc.PresenceService) *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		presence:   presence,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.DocID] == nil {
				h.Rooms[client.DocID] = make(map[*Client]bool)
			}
			h.Rooms[client.DocID][client] = true
			h.mu.Unlock()

			// New viewers get the roster right away instead of waiting for
			// the first heartbeat to land.
			h.broadcastRoster(client.DocID)

		case client := <-h.Unregister:
			h.mu.Lock()
			docID := client.DocID
			stillOpen := false
			if _, ok := h.Rooms[docID][client]; ok {
				delete(h.Rooms[docID], client)
				close(client.Send)
				if len(h.Rooms[docID]) == 0 {
					delete(h.Rooms, docID)
				} else {
					stillOpen = true
				}
			}
			h.mu.Unlock()

			// The departed user's record stays in storage and ages out of
			// the roster on its own; remaining viewers still get a refresh.
			if stillOpen {
				h.broadcastRoster(docID)
			}

		case msg := <-h.Broadcast:
			if msg.Type != HeartbeatType {
				continue
			}
			var payload HeartbeatPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				logger.Sugar.Errorf("Error unmarshalling heartbeat payload: %v", err)
				continue
			}
			if err := h.presence.Heartbeat(msg.DocID, msg.UserID, payload.Name, payload.AvatarURL); err != nil {
				logger.Sugar.Errorf("Failed to persist heartbeat for user %s on doc %s: %v", msg.UserID, msg.DocID, err)
				continue
			}
			h.broadcastRoster(msg.DocID)
		}
	}
}

func (h *Hub) broadcastRoster(docID string) {
	live, err := h.presence.ListLive(docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to build roster for doc %s: %v", docID, err)
		return
	}

	payload, err := json.Marshal(live)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling roster: %v", err)
		return
	}
	rosterMsg, _ := json.Marshal(WSMessage{Type: RosterType, DocID: docID, Payload: payload})

	h.mu.Lock()
	clientsToSend := make([]*Client, 0, len(h.Rooms[docID]))
	for client := range h.Rooms[docID] {
		clientsToSend = append(clientsToSend, client)
	}
	h.mu.Unlock()

	// Send outside the lock. A lagging client just misses this refresh; the
	// read/write pumps handle unresponsive connections.
	for _, client := range clientsToSend {
		select {
		case client.Send <- rosterMsg:
		default:
			logger.Sugar.Warnf("Client %s's send buffer was full during roster update.", client.UserID)
		}
	}
}
