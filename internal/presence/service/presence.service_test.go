package service

import (
	"testing"
	"time"

	"collabdocs/internal/presence/repository"
	"collabdocs/pkg/apperr"
	"collabdocs/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*PresenceService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewPresenceService(repository.NewPresenceRepository(db))
	svc.now = func() time.Time { return testNow }
	return svc, mock
}

func TestHeartbeatUpsertsByDocumentAndUser(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO presence").
		WithArgs("doc-1", "user-1", "Ada", "https://example.com/a.png", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Heartbeat("doc-1", "user-1", "Ada", "https://example.com/a.png"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHeartbeatRequiresAuthentication(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Heartbeat("doc-1", "", "Ada", "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestListLiveStalenessWindow(t *testing.T) {
	svc, mock := newTestService(t)

	rows := sqlmock.NewRows([]string{"document_id", "user_id", "name", "avatar_url", "last_seen"}).
		AddRow("doc-1", "fresh", "Fresh", "", testNow.Add(-29999*time.Millisecond)).
		AddRow("doc-1", "edge", "Edge", "", testNow.Add(-StalenessWindow)).
		AddRow("doc-1", "stale", "Stale", "", testNow.Add(-30001*time.Millisecond))
	mock.ExpectQuery("SELECT document_id, user_id, name, avatar_url, last_seen").
		WithArgs("doc-1").
		WillReturnRows(rows)

	live, err := svc.ListLive("doc-1")
	require.NoError(t, err)
	require.Len(t, live, 1)
	// 29,999ms in; 30,000ms and beyond out. Stale rows stay stored.
	assert.Equal(t, "fresh", live[0].UserID)
}

func TestListLiveEmptyDocument(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT document_id, user_id, name, avatar_url, last_seen").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"document_id", "user_id", "name", "avatar_url", "last_seen"}))

	live, err := svc.ListLive("doc-1")
	require.NoError(t, err)
	assert.Empty(t, live)
	assert.NotNil(t, live)
}
