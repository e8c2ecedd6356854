package access

import (
	"encoding/json"
	"net/http"

	"collabdocs/internal/access/model"
	"collabdocs/internal/access/service"
	"collabdocs/middleware"
	"collabdocs/pkg/apperr"
	"collabdocs/pkg/logger"
)

type Handler struct {
	Service *service.AccessService
}

func NewHandler(service *service.AccessService) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r)

	var req model.CreateDocRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // Ignore error, default to empty

	doc, err := h.Service.CreateDocument(userID, req.Title)
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}

	writeJSON(w, model.CreateDocResponse{DocID: doc.ID})
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "Missing docId parameter", http.StatusBadRequest)
		return
	}

	doc, err := h.Service.GetDocument(docID, middleware.UserID(r))
	if err != nil {
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	writeJSON(w, doc)
}

func (h *Handler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docs, err := h.Service.ListOwned(middleware.UserID(r))
	if err != nil {
		http.Error(w, "Failed to list documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, docs)
}

func (h *Handler) GetSharedDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docs, err := h.Service.ListShared(middleware.UserID(r))
	if err != nil {
		http.Error(w, "Failed to list shared documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, docs)
}

func (h *Handler) GetTrash(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docs, err := h.Service.ListTrash(middleware.UserID(r))
	if err != nil {
		http.Error(w, "Failed to list trash", http.StatusInternalServerError)
		return
	}
	writeJSON(w, docs)
}

func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "Missing docId parameter", http.StatusBadRequest)
		return
	}

	var req model.UpdateDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateDocument(docID, middleware.UserID(r), req); err != nil {
		logger.Sugar.Errorf("Failed to update doc %s: %v", docID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ArchiveDocument(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

func (h *Handler) RestoreDocument(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *Handler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "Missing docId parameter", http.StatusBadRequest)
		return
	}

	var err error
	if archived {
		err = h.Service.ArchiveDocument(docID, middleware.UserID(r))
	} else {
		err = h.Service.RestoreDocument(docID, middleware.UserID(r))
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to set archived=%v for doc %s: %v", archived, docID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "Missing docId parameter", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteDocument(docID, middleware.UserID(r)); err != nil {
		logger.Sugar.Errorf("Failed to delete document %s: %v", docID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Document deleted successfully"))
}

func (h *Handler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocID == "" || req.UserID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role, ok := model.ParseRole(req.Role)
	if !ok {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	if err := h.Service.GrantAccess(req.DocID, middleware.UserID(r), req.UserID, role); err != nil {
		logger.Sugar.Errorf("Failed to grant access on doc %s: %v", req.DocID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocID == "" || req.UserID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.RevokeGrant(req.DocID, middleware.UserID(r), req.UserID); err != nil {
		logger.Sugar.Errorf("Failed to revoke access on doc %s: %v", req.DocID, err)
		http.Error(w, err.Error(), apperr.Status(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetAccessList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "Missing docId parameter", http.StatusBadRequest)
		return
	}

	grants, err := h.Service.ListGrants(docID, middleware.UserID(r))
	if err != nil {
		http.Error(w, "Failed to list access", http.StatusInternalServerError)
		return
	}
	writeJSON(w, grants)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
