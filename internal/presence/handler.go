package presence

import (
	"encoding/json"
	"net/http"

	"collabdocs/internal/presence/model"
	"collabdocs/internal/presence/service"
	"collabdocs/middleware"
	"collabdocs/pkg/apperr"
	"collabdocs/pkg/logger"
)

type Handler struct {
	Service *service.PresenceService
}

func NewHandler(service *service.PresenceService) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.Heartbeat(req.DocID, middleware.UserID(r), req.Name, req.AvatarURL); err != nil {
		logger.Sugar.Errorf("Failed to record heartbeat for doc %s: %v", req.DocID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ListLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "Missing docId parameter", http.StatusBadRequest)
		return
	}

	records, err := h.Service.ListLive(docID)
	if err != nil {
		http.Error(w, "Failed to list presence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
