package service

import (
	"time"

	"collabdocs/internal/presence/model"
	"collabdocs/internal/presence/repository"
	"collabdocs/pkg/apperr"
)

// StalenessWindow is how long a heartbeat keeps a user visible. Staleness is
// evaluated against the stored timestamp at read time; nothing sweeps rows.
const StalenessWindow = 30 * time.Second

type PresenceService struct {
	Repo *repository.PresenceRepository
	now  func() time.Time
}

func NewPresenceService(repo *repository.PresenceRepository) *PresenceService {
	return &PresenceService{Repo: repo, now: time.Now}
}

func (s *PresenceService) Heartbeat(docID, userID, name, avatarURL string) error {
	if userID == "" {
		return apperr.ErrUnauthenticated
	}
	return s.Repo.Upsert(docID, userID, name, avatarURL, s.now().UTC())
}

// ListLive returns the records seen within the staleness window. Stale rows
// stay in storage and simply drop out of the result.
func (s *PresenceService) ListLive(docID string) ([]model.PresenceRecord, error) {
	records, err := s.Repo.ListByDocument(docID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	live := []model.PresenceRecord{}
	for _, rec := range records {
		if now.Sub(rec.LastSeen) < StalenessWindow {
			live = append(live, rec)
		}
	}
	return live, nil
}
