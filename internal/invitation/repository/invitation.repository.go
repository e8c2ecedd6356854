package repository

import (
	"database/sql"

	"collabdocs/internal/invitation/model"
	"collabdocs/pkg/logger"
)

type InvitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{DB: db}
}

const selectColumns = `id, document_id, invited_by, invited_email, role, status, created_at, expires_at`

func (r *InvitationRepository) Insert(inv *model.Invitation) error {
	_, err := r.DB.Exec(`INSERT INTO invitations (id, document_id, invited_by, invited_email, role, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.DocumentID, inv.InvitedBy, inv.InvitedEmail, inv.Role, inv.Status, inv.CreatedAt, inv.ExpiresAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert invitation for %s on doc %s: %v", inv.InvitedEmail, inv.DocumentID, err)
	}
	return err
}

// Get returns sql.ErrNoRows when the invitation does not exist.
func (r *InvitationRepository) Get(invitationID string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.DB.QueryRow(`SELECT `+selectColumns+` FROM invitations WHERE id = $1`, invitationID).
		Scan(&inv.ID, &inv.DocumentID, &inv.InvitedBy, &inv.InvitedEmail, &inv.Role, &inv.Status, &inv.CreatedAt, &inv.ExpiresAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Sugar.Errorf("Failed to get invitation %s: %v", invitationID, err)
		}
		return nil, err
	}
	return &inv, nil
}

// HasPending reports whether a pending invitation exists for the pair. The
// partial unique index on (document_id, invited_email) WHERE status='pending'
// closes the race this check leaves open under concurrent callers.
func (r *InvitationRepository) HasPending(docID, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(`SELECT EXISTS(
		SELECT 1 FROM invitations WHERE document_id = $1 AND invited_email = $2 AND status = $3)`,
		docID, email, model.StatusPending).Scan(&exists)
	if err != nil {
		logger.Sugar.Errorf("Failed to check pending invitation for %s on doc %s: %v", email, docID, err)
	}
	return exists, err
}

func (r *InvitationRepository) ListByDocument(docID string) ([]model.Invitation, error) {
	rows, err := r.DB.Query(`SELECT `+selectColumns+` FROM invitations WHERE document_id = $1 ORDER BY created_at DESC`, docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list invitations for doc %s: %v", docID, err)
		return nil, err
	}
	return scanInvitations(rows)
}

func (r *InvitationRepository) ListPendingByEmail(email string) ([]model.Invitation, error) {
	rows, err := r.DB.Query(`SELECT `+selectColumns+` FROM invitations WHERE invited_email = $1 AND status = $2 ORDER BY created_at DESC`,
		email, model.StatusPending)
	if err != nil {
		logger.Sugar.Errorf("Failed to list invitations for email %s: %v", email, err)
		return nil, err
	}
	return scanInvitations(rows)
}

func scanInvitations(rows *sql.Rows) ([]model.Invitation, error) {
	defer rows.Close()
	invitations := []model.Invitation{}
	for rows.Next() {
		var inv model.Invitation
		if err := rows.Scan(&inv.ID, &inv.DocumentID, &inv.InvitedBy, &inv.InvitedEmail, &inv.Role, &inv.Status, &inv.CreatedAt, &inv.ExpiresAt); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// SetStatusTx patches the status inside a caller-owned transaction. The WHERE
// clause re-checks pending so a lost race surfaces as zero rows affected.
func (r *InvitationRepository) SetStatusTx(tx *sql.Tx, invitationID string, status model.Status) (int64, error) {
	result, err := tx.Exec(`UPDATE invitations SET status = $1 WHERE id = $2 AND status = $3`,
		status, invitationID, model.StatusPending)
	if err != nil {
		logger.Sugar.Errorf("Failed to set invitation %s status to %s: %v", invitationID, status, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *InvitationRepository) SetStatus(invitationID string, status model.Status) (int64, error) {
	result, err := r.DB.Exec(`UPDATE invitations SET status = $1 WHERE id = $2 AND status = $3`,
		status, invitationID, model.StatusPending)
	if err != nil {
		logger.Sugar.Errorf("Failed to set invitation %s status to %s: %v", invitationID, status, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *InvitationRepository) Delete(invitationID string) error {
	_, err := r.DB.Exec(`DELETE FROM invitations WHERE id = $1`, invitationID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete invitation %s: %v", invitationID, err)
	}
	return err
}
