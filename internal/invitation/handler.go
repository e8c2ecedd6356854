package invitation

import (
	"encoding/json"
	"net/http"

	accessmodel "collabdocs/internal/access/model"
	"collabdocs/internal/invitation/model"
	"collabdocs/internal/invitation/service"
	"collabdocs/middleware"
	"collabdocs/pkg/apperr"
	"collabdocs/pkg/logger"
)

type Handler struct {
	Service *service.InvitationService
}

func NewHandler(service *service.InvitationService) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocID == "" || req.Email == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role, ok := accessmodel.ParseRole(req.Role)
	if !ok {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	inv, err := h.Service.Create(req.DocID, middleware.UserID(r), req.Email, role)
	if err != nil {
		logger.Sugar.Errorf("Failed to create invitation for doc %s: %v", req.DocID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(inv)
}

func (h *Handler) ListForDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "Missing docId parameter", http.StatusBadRequest)
		return
	}

	invitations, err := h.Service.ListForDocument(docID, middleware.UserID(r))
	if err != nil {
		http.Error(w, "Failed to list invitations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invitations)
}

// Inbox lists the caller's actionable invitations, keyed by the email claim
// from the identity provider.
func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := middleware.Email(r)
	if email == "" {
		http.Error(w, "Unauthorized: email claim is missing", http.StatusUnauthorized)
		return
	}

	invitations, err := h.Service.ListActionable(email)
	if err != nil {
		http.Error(w, "Failed to list invitations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invitations)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.IDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.Accept(req.ID, middleware.UserID(r)); err != nil {
		logger.Sugar.Errorf("Failed to accept invitation %s: %v", req.ID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.IDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.Decline(req.ID); err != nil {
		logger.Sugar.Errorf("Failed to decline invitation %s: %v", req.ID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	invitationID := r.URL.Query().Get("id")
	if invitationID == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(invitationID, middleware.UserID(r)); err != nil {
		logger.Sugar.Errorf("Failed to delete invitation %s: %v", invitationID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}
