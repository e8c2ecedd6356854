package service

import (
	"database/sql"
	"testing"
	"time"

	accessrepo "collabdocs/internal/access/repository"
	accesssvc "collabdocs/internal/access/service"
	"collabdocs/internal/accessrequest/repository"
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

func newTestService(t *testing.T) (*AccessRequestService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	access := accesssvc.NewAccessService(accessrepo.NewAccessRepository(db))
	svc := NewAccessRequestService(repository.NewAccessRequestRepository(db), access)
	svc.now = func() time.Time { return testNow }
	return svc, mock
}

func expectGetDocument(mock sqlmock.Sqlmock, docID, ownerID string) {
	created := testNow.Add(-48 * time.Hour)
	mock.ExpectQuery("SELECT id, owner_id, title, is_archived, is_published").
		WithArgs(docID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "is_archived", "is_published", "created_at", "updated_at"}).
			AddRow(docID, ownerID, "Untitled Document", false, false, created, created))
}

func expectGetRequest(mock sqlmock.Sqlmock, requestID, docID, userID string) {
	mock.ExpectQuery("SELECT id, document_id, user_id, COALESCE").
		WithArgs(requestID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "user_id", "reason", "created_at"}).
			AddRow(requestID, docID, userID, "please", testNow.Add(-time.Hour)))
}

func TestRequestIsIdempotent(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO access_requests").
		WithArgs(sqlmock.AnyArg(), "doc-1", "user-1", "need it", testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.Request("doc-1", "user-1", "need it"))

	// The second ask lands on the unique constraint and is a silent no-op.
	mock.ExpectExec("INSERT INTO access_requests").
		WithArgs(sqlmock.AnyArg(), "doc-1", "user-1", "need it", testNow).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, svc.Request("doc-1", "user-1", "need it"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRequiresAuthentication(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Request("doc-1", "", "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestListForOwnerFansOutAcrossDocuments(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id FROM documents WHERE owner_id").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("doc-1").AddRow("doc-2"))
	mock.ExpectQuery("SELECT id, document_id, user_id, COALESCE").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "user_id", "reason", "created_at"}).
			AddRow("req-1", "doc-1", "user-a", "", testNow))
	mock.ExpectQuery("SELECT id, document_id, user_id, COALESCE").
		WithArgs("doc-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "user_id", "reason", "created_at"}).
			AddRow("req-2", "doc-2", "user-b", "reviewing", testNow).
			AddRow("req-3", "doc-2", "user-c", "", testNow))

	requests, err := svc.ListForOwner("owner-1")
	require.NoError(t, err)
	require.Len(t, requests, 3)
	assert.Equal(t, "req-1", requests[0].ID)
	assert.Equal(t, "req-3", requests[2].ID)
}

func TestResolveGrantsThenDeletes(t *testing.T) {
	svc, mock := newTestService(t)

	expectGetRequest(mock, "req-1", "doc-1", "user-a")
	expectGetDocument(mock, "doc-1", "owner-1")
	mock.ExpectExec("INSERT INTO document_access").
		WithArgs(sqlmock.AnyArg(), "doc-1", "user-a", "viewer", "owner-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM access_requests").
		WithArgs("req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Resolve("req-1", "owner-1", "viewer"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveNonOwnerUnauthorized(t *testing.T) {
	svc, mock := newTestService(t)

	expectGetRequest(mock, "req-1", "doc-1", "user-a")
	expectGetDocument(mock, "doc-1", "owner-1")

	err := svc.Resolve("req-1", "intruder", "viewer")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestResolveMissingRequest(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery("SELECT id, document_id, user_id, COALESCE").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	err := svc.Resolve("nope", "owner-1", "viewer")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRejectDeletesWithoutGrant(t *testing.T) {
	svc, mock := newTestService(t)

	expectGetRequest(mock, "req-1", "doc-1", "user-a")
	expectGetDocument(mock, "doc-1", "owner-1")
	mock.ExpectExec("DELETE FROM access_requests").
		WithArgs("req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Reject("req-1", "owner-1"))
	// No grant insert expectation: rejection is deletion and nothing else.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectNonOwnerUnauthorized(t *testing.T) {
	svc, mock := newTestService(t)

	expectGetRequest(mock, "req-1", "doc-1", "user-a")
	expectGetDocument(mock, "doc-1", "owner-1")

	err := svc.Reject("req-1", "intruder")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
