package accessrequest

import (
	"encoding/json"
	"net/http"

	accessmodel "collabdocs/internal/access/model"
	"collabdocs/internal/accessrequest/model"
	"collabdocs/internal/accessrequest/service"
	"collabdocs/middleware"
	"collabdocs/pkg/apperr"
	"collabdocs/pkg/logger"
)

type Handler struct {
	Service *service.AccessRequestService
}

func NewHandler(service *service.AccessRequestService) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.Request(req.DocID, middleware.UserID(r), req.Reason); err != nil {
		logger.Sugar.Errorf("Failed to create access request for doc %s: %v", req.DocID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ListForOwner(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requests, err := h.Service.ListForOwner(middleware.UserID(r))
	if err != nil {
		http.Error(w, "Failed to list access requests", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RequestID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role, ok := accessmodel.ParseRole(req.Role)
	if !ok {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	if err := h.Service.Resolve(req.RequestID, middleware.UserID(r), role); err != nil {
		logger.Sugar.Errorf("Failed to resolve access request %s: %v", req.RequestID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := r.URL.Query().Get("id")
	if requestID == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	if err := h.Service.Reject(requestID, middleware.UserID(r)); err != nil {
		logger.Sugar.Errorf("Failed to reject access request %s: %v", requestID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}
