package socket

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	accessrepo "collabdocs/internal/access/repository"
	accesssvc "collabdocs/internal/access/service"
	presencemodel "collabdocs/internal/presence/model"
	presencerepo "collabdocs/internal/presence/repository"
	presencesvc "collabdocs/internal/presence/service"
	"collabdocs/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

// Helper function to read messages from a WebSocket connection with a timeout.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	var msg WSMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	err = json.Unmarshal(p, &msg)
	require.NoError(t, err, "Failed to unmarshal WSMessage JSON")
	return msg
}

func decodeRoster(t *testing.T, msg WSMessage) []presencemodel.PresenceRecord {
	t.Helper()
	require.Equal(t, RosterType, msg.Type)
	var roster []presencemodel.PresenceRecord
	require.NoError(t, json.Unmarshal(msg.Payload, &roster))
	return roster
}

func expectDocument(mock sqlmock.Sqlmock, docID, ownerID string) {
	created := time.Now().Add(-time.Hour)
	mock.ExpectQuery("SELECT id, owner_id, title, is_archived, is_published").
		WithArgs(docID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "is_archived", "is_published", "created_at", "updated_at"}).
			AddRow(docID, ownerID, "Untitled Document", false, false, created, created))
}

func presenceRows(docID string, userIDs ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"document_id", "user_id", "name", "avatar_url", "last_seen"})
	for _, userID := range userIDs {
		rows.AddRow(docID, userID, userID, "", time.Now())
	}
	return rows
}

func TestHubPresenceRoster(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	accessService := accesssvc.NewAccessService(accessrepo.NewAccessRepository(db))
	presenceService := presencesvc.NewPresenceService(presencerepo.NewPresenceRepository(db))

	hub := NewHub(presenceService)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Tests bypass the JWT middleware and pass identity directly.
		userID := r.URL.Query().Get("user_id")
		ServeWs(hub, accessService, w, r, userID)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	docID := "doc-1"

	// Client 1 is the owner. Joining checks read access, then pushes the
	// current (empty) roster.
	expectDocument(mock, docID, "user1")
	mock.ExpectQuery("SELECT document_id, user_id, name, avatar_url, last_seen").
		WithArgs(docID).
		WillReturnRows(presenceRows(docID))

	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?docId="+docID+"&user_id=user1", nil)
	require.NoError(t, err, "Client 1 failed to connect")
	defer conn1.Close()

	roster := decodeRoster(t, readMessage(t, conn1))
	assert.Empty(t, roster)

	// A heartbeat persists through the presence service and fans the
	// refreshed roster back out.
	mock.ExpectExec("INSERT INTO presence").
		WithArgs(docID, "user1", "User One", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT document_id, user_id, name, avatar_url, last_seen").
		WithArgs(docID).
		WillReturnRows(presenceRows(docID, "user1"))

	payload, _ := json.Marshal(HeartbeatPayload{Name: "User One"})
	require.NoError(t, conn1.WriteJSON(WSMessage{Type: HeartbeatType, Payload: payload}))

	roster = decodeRoster(t, readMessage(t, conn1))
	require.Len(t, roster, 1)
	assert.Equal(t, "user1", roster[0].UserID)

	// Client 2 holds a viewer grant; its join refreshes the roster for
	// everyone in the room.
	expectDocument(mock, docID, "user1")
	mock.ExpectQuery("SELECT role FROM document_access").
		WithArgs(docID, "user2").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("viewer"))
	mock.ExpectQuery("SELECT document_id, user_id, name, avatar_url, last_seen").
		WithArgs(docID).
		WillReturnRows(presenceRows(docID, "user1"))

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?docId="+docID+"&user_id=user2", nil)
	require.NoError(t, err, "Client 2 failed to connect")
	defer conn2.Close()

	roster = decodeRoster(t, readMessage(t, conn2))
	require.Len(t, roster, 1)
	assert.Equal(t, "user1", roster[0].UserID)

	// Client 1 receives the same refresh.
	roster = decodeRoster(t, readMessage(t, conn1))
	require.Len(t, roster, 1)
}

func TestHubRejectsUnreadableDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	accessService := accesssvc.NewAccessService(accessrepo.NewAccessRepository(db))
	presenceService := presencesvc.NewPresenceService(presencerepo.NewPresenceRepository(db))

	hub := NewHub(presenceService)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, accessService, w, r, r.URL.Query().Get("user_id"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	// Unpublished document, no grant: the upgrade is refused outright.
	expectDocument(mock, "doc-1", "user1")
	mock.ExpectQuery("SELECT role FROM document_access").
		WithArgs("doc-1", "stranger").
		WillReturnError(sql.ErrNoRows)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws?docId=doc-1&user_id=stranger", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
