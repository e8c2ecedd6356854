package repository

import (
	"database/sql"

	"collabdocs/internal/accessrequest/model"
	"collabdocs/pkg/logger"
)

type AccessRequestRepository struct {
	DB *sql.DB
}

func NewAccessRequestRepository(db *sql.DB) *AccessRequestRepository {
	return &AccessRequestRepository{DB: db}
}

// Insert is idempotent: a second request for the same (document, user) pair
// hits the unique constraint and is silently dropped.
func (r *AccessRequestRepository) Insert(req *model.AccessRequest) error {
	_, err := r.DB.Exec(`INSERT INTO access_requests (id, document_id, user_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, user_id) DO NOTHING`,
		req.ID, req.DocumentID, req.UserID, req.Reason, req.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert access request for user %s on doc %s: %v", req.UserID, req.DocumentID, err)
	}
	return err
}

// Get returns sql.ErrNoRows when the request does not exist.
func (r *AccessRequestRepository) Get(requestID string) (*model.AccessRequest, error) {
	var req model.AccessRequest
	err := r.DB.QueryRow(`SELECT id, document_id, user_id, COALESCE(reason, ''), created_at
		FROM access_requests WHERE id = $1`, requestID).
		Scan(&req.ID, &req.DocumentID, &req.UserID, &req.Reason, &req.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Sugar.Errorf("Failed to get access request %s: %v", requestID, err)
		}
		return nil, err
	}
	return &req, nil
}

func (r *AccessRequestRepository) ListByDocument(docID string) ([]model.AccessRequest, error) {
	rows, err := r.DB.Query(`SELECT id, document_id, user_id, COALESCE(reason, ''), created_at
		FROM access_requests WHERE document_id = $1 ORDER BY created_at ASC`, docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list access requests for doc %s: %v", docID, err)
		return nil, err
	}
	defer rows.Close()

	requests := []model.AccessRequest{}
	for rows.Next() {
		var req model.AccessRequest
		if err := rows.Scan(&req.ID, &req.DocumentID, &req.UserID, &req.Reason, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// ListDocumentIDsByOwner includes archived documents: requests against an
// archived document still await the owner.
func (r *AccessRequestRepository) ListDocumentIDsByOwner(ownerID string) ([]string, error) {
	rows, err := r.DB.Query(`SELECT id FROM documents WHERE owner_id = $1`, ownerID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list documents for owner %s: %v", ownerID, err)
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *AccessRequestRepository) Delete(requestID string) error {
	_, err := r.DB.Exec(`DELETE FROM access_requests WHERE id = $1`, requestID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete access request %s: %v", requestID, err)
	}
	return err
}
