package model

import "time"

// PresenceRecord is ephemeral UI state, never a security control. Records are
// aged out of query results by the staleness window, not deleted.
type PresenceRecord struct {
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url"`
	LastSeen   time.Time `json:"last_seen"`
}

type HeartbeatRequest struct {
	DocID     string `json:"document_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
