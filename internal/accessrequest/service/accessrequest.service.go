package service

import (
	"database/sql"
	"time"

	accessmodel "collabdocs/internal/access/model"
	accesssvc "collabdocs/internal/access/service"
	"collabdocs/internal/accessrequest/model"
	"collabdocs/internal/accessrequest/repository"
	"collabdocs/pkg/apperr"

	"github.com/google/uuid"
)

type AccessRequestService struct {
	Repo   *repository.AccessRequestRepository
	Access *accesssvc.AccessService
	now    func() time.Time
}

func NewAccessRequestService(repo *repository.AccessRequestRepository, access *accesssvc.AccessService) *AccessRequestService {
	return &AccessRequestService{Repo: repo, Access: access, now: time.Now}
}

// Request asks for access to a document. Anyone authenticated may ask; a
// repeated request while one is outstanding is a silent no-op.
func (s *AccessRequestService) Request(docID, userID, reason string) error {
	if userID == "" {
		return apperr.ErrUnauthenticated
	}
	req := &model.AccessRequest{
		ID:         uuid.NewString(),
		DocumentID: docID,
		UserID:     userID,
		Reason:     reason,
		CreatedAt:  s.now().UTC(),
	}
	return s.Repo.Insert(req)
}

// ListForOwner fans out over the owner's documents and flattens the
// outstanding requests. N+1 by design; bounded by one user's document count.
func (s *AccessRequestService) ListForOwner(ownerID string) ([]model.AccessRequest, error) {
	docIDs, err := s.Repo.ListDocumentIDsByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	requests := []model.AccessRequest{}
	for _, docID := range docIDs {
		docRequests, err := s.Repo.ListByDocument(docID)
		if err != nil {
			return nil, err
		}
		requests = append(requests, docRequests...)
	}
	return requests, nil
}

// Resolve approves a request: mint the grant through the access registry,
// then delete the row. The grant call re-verifies document ownership.
func (s *AccessRequestService) Resolve(requestID, ownerID string, role accessmodel.Role) error {
	req, err := s.Repo.Get(requestID)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Access.GrantAccess(req.DocumentID, ownerID, req.UserID, role); err != nil {
		return err
	}
	return s.Repo.Delete(requestID)
}

// Reject deletes the request without a grant. There is no stored rejected
// state; the requester simply sees the request disappear.
func (s *AccessRequestService) Reject(requestID, ownerID string) error {
	if ownerID == "" {
		return apperr.ErrUnauthenticated
	}
	req, err := s.Repo.Get(requestID)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	doc, err := s.Access.Repo.GetDocument(req.DocumentID)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if doc.OwnerID != ownerID {
		return apperr.ErrUnauthorized
	}
	return s.Repo.Delete(requestID)
}
