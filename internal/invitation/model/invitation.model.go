package model

import (
	"time"

	accessmodel "collabdocs/internal/access/model"
)

// Status is the closed set of invitation states. Transitions are monotonic:
// pending moves to accepted or declined and never back.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

type Invitation struct {
	ID           string           `json:"id"`
	DocumentID   string           `json:"document_id"`
	InvitedBy    string           `json:"invited_by"`
	InvitedEmail string           `json:"invited_email"`
	Role         accessmodel.Role `json:"role"`
	Status       Status           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	ExpiresAt    time.Time        `json:"expires_at"`
}

// Expired is a pure read-time predicate. An expired invitation keeps its
// pending status in storage; it is simply no longer actionable.
func (i *Invitation) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

type CreateRequest struct {
	DocID string `json:"document_id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type IDRequest struct {
	ID string `json:"invitation_id"`
}
