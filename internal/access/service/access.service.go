package service

import (
	"database/sql"
	"time"

	"collabdocs/internal/access/model"
	"collabdocs/internal/access/repository"
	"collabdocs/pkg/apperr"

	"github.com/google/uuid"
)

// AccessService is the single source of truth for who may do what to a
// document. Every other service routes grant creation through it.
type AccessService struct {
	Repo *repository.AccessRepository
	now  func() time.Time
}

func NewAccessService(repo *repository.AccessRepository) *AccessService {
	return &AccessService{Repo: repo, now: time.Now}
}

func (s *AccessService) CreateDocument(ownerID, title string) (*model.Document, error) {
	if ownerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	if title == "" {
		title = "Untitled Document"
	}
	doc := &model.Document{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: s.now().UTC(),
	}
	doc.UpdatedAt = doc.CreatedAt
	if err := s.Repo.CreateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CanRead reports whether userID may see the document. A published,
// non-archived document is readable by anyone, including unauthenticated
// callers; otherwise the caller must be the owner or hold a grant.
func (s *AccessService) CanRead(docID, userID string) (bool, error) {
	doc, err := s.Repo.GetDocument(docID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if doc.IsPublished && !doc.IsArchived {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}
	if doc.OwnerID == userID {
		return true, nil
	}
	if _, err := s.Repo.GetGrantRole(docID, userID); err == nil {
		return true, nil
	} else if err != sql.ErrNoRows {
		return false, err
	}
	return false, nil
}

// CanWrite reports whether userID may mutate the document's content: the
// owner, or an editor grant. Viewer grants never permit write.
func (s *AccessService) CanWrite(docID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	doc, err := s.Repo.GetDocument(docID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if doc.OwnerID == userID {
		return true, nil
	}
	role, err := s.Repo.GetGrantRole(docID, userID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role == model.RoleEditor, nil
}

// GrantAccess idempotently ensures a single grant row for the target user.
// The first write wins: a repeat call with a different role keeps the
// existing role. Changing a role takes a revoke followed by a fresh grant.
func (s *AccessService) GrantAccess(docID, granterID, targetUserID string, role model.Role) error {
	if granterID == "" {
		return apperr.ErrUnauthenticated
	}
	doc, err := s.Repo.GetDocument(docID)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if doc.OwnerID != granterID {
		return apperr.ErrUnauthorized
	}
	return s.EnsureGrant(docID, targetUserID, granterID, role)
}

// EnsureGrant inserts a grant without an ownership check. Invitation
// acceptance uses it directly: the authorization there is the invitation
// itself, which was already owner-gated at creation.
func (s *AccessService) EnsureGrant(docID, targetUserID, invitedBy string, role model.Role) error {
	grant := &model.AccessGrant{
		ID:         uuid.NewString(),
		DocumentID: docID,
		UserID:     targetUserID,
		Role:       role,
		InvitedBy:  invitedBy,
		CreatedAt:  s.now().UTC(),
	}
	return s.Repo.InsertGrant(grant)
}

// ListGrants is owner-only. Anyone else gets an empty list rather than an
// error so the endpoint never leaks whether a document exists.
func (s *AccessService) ListGrants(docID, requesterID string) ([]model.AccessGrant, error) {
	doc, err := s.Repo.GetDocument(docID)
	if err == sql.ErrNoRows {
		return []model.AccessGrant{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != requesterID {
		return []model.AccessGrant{}, nil
	}
	return s.Repo.ListGrants(docID)
}

func (s *AccessService) RevokeGrant(docID, ownerID, targetUserID string) error {
	doc, err := s.Repo.GetDocument(docID)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if doc.OwnerID != ownerID {
		return apperr.ErrUnauthorized
	}
	return s.Repo.DeleteGrant(docID, targetUserID)
}

// GetDocument applies the read policy. A document the caller cannot read is
// reported as absent, not forbidden.
func (s *AccessService) GetDocument(docID, userID string) (*model.Document, error) {
	doc, err := s.Repo.GetDocument(docID)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doc.IsPublished && !doc.IsArchived {
		return doc, nil
	}
	if userID != "" {
		if doc.OwnerID == userID {
			return doc, nil
		}
		if _, err := s.Repo.GetGrantRole(docID, userID); err == nil {
			return doc, nil
		} else if err != sql.ErrNoRows {
			return nil, err
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *AccessService) ListOwned(ownerID string) ([]model.Document, error) {
	return s.Repo.ListByOwner(ownerID, false)
}

func (s *AccessService) ListShared(userID string) ([]model.Document, error) {
	return s.Repo.ListShared(userID)
}

func (s *AccessService) ListTrash(ownerID string) ([]model.Document, error) {
	return s.Repo.ListByOwner(ownerID, true)
}

func (s *AccessService) ArchiveDocument(docID, ownerID string) error {
	if err := s.requireOwner(docID, ownerID); err != nil {
		return err
	}
	return s.Repo.SetArchived(docID, true)
}

func (s *AccessService) RestoreDocument(docID, ownerID string) error {
	if err := s.requireOwner(docID, ownerID); err != nil {
		return err
	}
	return s.Repo.SetArchived(docID, false)
}

func (s *AccessService) UpdateDocument(docID, ownerID string, req model.UpdateDocRequest) error {
	if err := s.requireOwner(docID, ownerID); err != nil {
		return err
	}
	if req.Title != nil {
		if err := s.Repo.UpdateTitle(docID, *req.Title); err != nil {
			return err
		}
	}
	if req.IsPublished != nil {
		if err := s.Repo.SetPublished(docID, *req.IsPublished); err != nil {
			return err
		}
	}
	return nil
}

func (s *AccessService) DeleteDocument(docID, ownerID string) error {
	if err := s.requireOwner(docID, ownerID); err != nil {
		return err
	}
	return s.Repo.DeleteDocument(docID)
}

func (s *AccessService) requireOwner(docID, userID string) error {
	if userID == "" {
		return apperr.ErrUnauthenticated
	}
	doc, err := s.Repo.GetDocument(docID)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if doc.OwnerID != userID {
		return apperr.ErrUnauthorized
	}
	return nil
}
