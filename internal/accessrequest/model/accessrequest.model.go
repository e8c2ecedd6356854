package model

import "time"

// AccessRequest has no status field on purpose: the row's existence is the
// pending state, and deletion is the only terminal transition.
type AccessRequest struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateRequest struct {
	DocID  string `json:"document_id"`
	Reason string `json:"reason,omitempty"`
}

type ResolveRequest struct {
	RequestID string `json:"request_id"`
	Role      string `json:"role"`
}
