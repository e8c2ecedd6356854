package service

import (
	"database/sql"
	"errors"
	"time"

	accessmodel "collabdocs/internal/access/model"
	accessrepo "collabdocs/internal/access/repository"
	"collabdocs/internal/invitation/model"
	"collabdocs/internal/invitation/repository"
	"collabdocs/pkg/apperr"
	"collabdocs/pkg/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// InvitationTTL is fixed at creation and never renewed.
const InvitationTTL = 7 * 24 * time.Hour

type InvitationService struct {
	DB     *sql.DB
	Repo   *repository.InvitationRepository
	Access *accessrepo.AccessRepository
	now    func() time.Time
}

func NewInvitationService(db *sql.DB, repo *repository.InvitationRepository, access *accessrepo.AccessRepository) *InvitationService {
	return &InvitationService{DB: db, Repo: repo, Access: access, now: time.Now}
}

// Create inserts a pending invitation. Only the document owner may invite,
// and only one pending invitation may exist per (document, email).
func (s *InvitationService) Create(docID, inviterID, email string, role accessmodel.Role) (*model.Invitation, error) {
	if inviterID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	doc, err := s.Access.GetDocument(docID)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != inviterID {
		return nil, apperr.ErrUnauthorized
	}

	pending, err := s.Repo.HasPending(docID, email)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.ErrConflict
	}

	now := s.now().UTC()
	inv := &model.Invitation{
		ID:           uuid.NewString(),
		DocumentID:   docID,
		InvitedBy:    inviterID,
		InvitedEmail: email,
		Role:         role,
		Status:       model.StatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(InvitationTTL),
	}
	if err := s.Repo.Insert(inv); err != nil {
		if isUniqueViolation(err) {
			// A concurrent caller won the check-then-insert race.
			return nil, apperr.ErrConflict
		}
		return nil, err
	}
	return inv, nil
}

// ListForDocument is owner-only; anyone else gets an empty list.
func (s *InvitationService) ListForDocument(docID, requesterID string) ([]model.Invitation, error) {
	doc, err := s.Access.GetDocument(docID)
	if err == sql.ErrNoRows {
		return []model.Invitation{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != requesterID {
		return []model.Invitation{}, nil
	}
	return s.Repo.ListByDocument(docID)
}

// ListActionable returns the pending, unexpired invitations for an email.
// Expired invitations keep their pending row but disappear from this view.
func (s *InvitationService) ListActionable(email string) ([]model.Invitation, error) {
	invitations, err := s.Repo.ListPendingByEmail(email)
	if err != nil {
		return nil, err
	}
	now := s.now()
	actionable := []model.Invitation{}
	for _, inv := range invitations {
		if !inv.Expired(now) {
			actionable = append(actionable, inv)
		}
	}
	return actionable, nil
}

// Accept moves the invitation to accepted and mints the grant in a single
// transaction. The grant insert is the access registry's usual conflict-free
// insert, so a retried accept cannot create a second row.
func (s *InvitationService) Accept(invitationID, userID string) error {
	if userID == "" {
		return apperr.ErrUnauthenticated
	}
	inv, err := s.Repo.Get(invitationID)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if inv.Status != model.StatusPending {
		return apperr.ErrConflict
	}
	if inv.Expired(s.now()) {
		return apperr.ErrExpired
	}

	tx, err := s.DB.Begin()
	if err != nil {
		logger.Sugar.Errorf("Failed to begin accept tx for invitation %s: %v", invitationID, err)
		return err
	}
	defer tx.Rollback()

	affected, err := s.Repo.SetStatusTx(tx, invitationID, model.StatusAccepted)
	if err != nil {
		return err
	}
	if affected == 0 {
		// Someone processed it between our read and this write.
		return apperr.ErrConflict
	}

	grant := &accessmodel.AccessGrant{
		ID:         uuid.NewString(),
		DocumentID: inv.DocumentID,
		UserID:     userID,
		Role:       inv.Role,
		InvitedBy:  inv.InvitedBy,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.Access.InsertGrantTx(tx, grant); err != nil {
		return err
	}
	return tx.Commit()
}

// Decline works on expired invitations too; declining is always allowed
// while the invitation is pending.
func (s *InvitationService) Decline(invitationID string) error {
	inv, err := s.Repo.Get(invitationID)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if inv.Status != model.StatusPending {
		return apperr.ErrConflict
	}

	affected, err := s.Repo.SetStatus(invitationID, model.StatusDeclined)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.ErrConflict
	}
	return nil
}

// Delete removes the invitation at any status. Only the owner of the
// invitation's document may delete.
func (s *InvitationService) Delete(invitationID, requesterID string) error {
	if requesterID == "" {
		return apperr.ErrUnauthenticated
	}
	inv, err := s.Repo.Get(invitationID)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	doc, err := s.Access.GetDocument(inv.DocumentID)
	if err == sql.ErrNoRows {
		return apperr.ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if doc.OwnerID != requesterID {
		return apperr.ErrUnauthorized
	}
	return s.Repo.Delete(invitationID)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
