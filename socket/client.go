package socket

import (
	"encoding/json"
	"net/http"
	"time"

	accesssvc "collabdocs/internal/access/service"
	"collabdocs/pkg/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin allows connections from the frontend dev server
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWs upgrades the connection and joins the client to the document's
// presence room. Presence is advisory, but the room itself is gated on the
// read policy so unauthorized users cannot watch who is viewing a document.
func ServeWs(hub *Hub, access *accesssvc.AccessService, w http.ResponseWriter, r *http.Request, userID string) {
	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "Missing docId parameter", http.StatusBadRequest)
		return
	}

	canRead, err := access.CanRead(docID, userID)
	if err != nil {
		logger.Sugar.Errorf("Database error checking read access: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !canRead {
		logger.Sugar.Warnf("Connection rejected: user %s cannot read doc %s", userID, docID)
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		Hub:    hub,
		Conn:   conn,
		DocID:  docID,
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	client.Hub.Register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			logger.Sugar.Errorf("Error unmarshalling message: %v", err)
			continue
		}

		// Overwrite with server-authoritative values so a client cannot
		// heartbeat on behalf of another user or document.
		msg.DocID = c.DocID
		msg.UserID = c.UserID

		c.Hub.Broadcast <- msg
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second) // Send ping every 30s
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection is dead
			}
		}
	}
}
