package model

import "time"

// Role is the closed set of rights a collaborator can hold on a document.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
)

// ParseRole rejects anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleViewer, RoleEditor:
		return Role(s), true
	}
	return "", false
}

type Document struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	IsArchived  bool      `json:"is_archived"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AccessGrant struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	Role       Role      `json:"role"`
	InvitedBy  string    `json:"invited_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateDocRequest struct {
	Title string `json:"title"`
}

type CreateDocResponse struct {
	DocID string `json:"document_id"`
}

type UpdateDocRequest struct {
	Title       *string `json:"title,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

type GrantRequest struct {
	DocID  string `json:"document_id"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type RevokeRequest struct {
	DocID  string `json:"document_id"`
	UserID string `json:"user_id"`
}
