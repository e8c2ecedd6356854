package repository

import (
	"database/sql"
	"time"

	"collabdocs/internal/presence/model"
	"collabdocs/pkg/logger"
)

type PresenceRepository struct {
	DB *sql.DB
}

func NewPresenceRepository(db *sql.DB) *PresenceRepository {
	return &PresenceRepository{DB: db}
}

// Upsert patches last_seen in place when a record already exists for the
// (document, user) pair. Concurrent heartbeats from duplicate tabs land on
// the same row; the key defines identity, not a client-generated id.
func (r *PresenceRepository) Upsert(docID, userID, name, avatarURL string, lastSeen time.Time) error {
	_, err := r.DB.Exec(`INSERT INTO presence (document_id, user_id, name, avatar_url, last_seen)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, user_id) DO UPDATE SET name = $3, avatar_url = $4, last_seen = $5`,
		docID, userID, name, avatarURL, lastSeen)
	if err != nil {
		logger.Sugar.Errorf("Failed to upsert presence for user %s on doc %s: %v", userID, docID, err)
	}
	return err
}

func (r *PresenceRepository) ListByDocument(docID string) ([]model.PresenceRecord, error) {
	rows, err := r.DB.Query(`SELECT document_id, user_id, name, avatar_url, last_seen
		FROM presence WHERE document_id = $1`, docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list presence for doc %s: %v", docID, err)
		return nil, err
	}
	defer rows.Close()

	records := []model.PresenceRecord{}
	for rows.Next() {
		var rec model.PresenceRecord
		if err := rows.Scan(&rec.DocumentID, &rec.UserID, &rec.Name, &rec.AvatarURL, &rec.LastSeen); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
