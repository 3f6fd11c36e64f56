package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/teamtodo/teamtodo-api/internal/middleware"
	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/service"
)

type CategoryHandler struct {
	svc *service.CategoryService
}

func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// ServeHTTP routes /api/v1/categories and /api/v1/categories/{id}
func (h *CategoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/categories")
	path = strings.TrimPrefix(path, "/")
	categoryID := strings.TrimRight(path, "/")

	if categoryID != "" {
		switch r.Method {
		case http.MethodPut:
			h.handleUpdate(w, r, categoryID)
		case http.MethodDelete:
			h.handleDelete(w, r, categoryID)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

type createCategoryRequest struct {
	AgentType   string `json:"agent_type"`
	AgentID     string `json:"agent_id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

func (h *CategoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	category, err := h.svc.Create(r.Context(), principal, service.CreateCategoryInput{
		AgentType:   model.AgentType(req.AgentType),
		AgentID:     req.AgentID,
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, category)
}

type updateCategoryRequest struct {
	AgentType   string  `json:"agent_type"`
	AgentID     string  `json:"agent_id"`
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (h *CategoryHandler) handleUpdate(w http.ResponseWriter, r *http.Request, categoryID string) {
	principal := middleware.GetPrincipal(r)

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	category, err := h.svc.Update(r.Context(), principal, categoryID, service.UpdateCategoryInput{
		AgentType:   model.AgentType(req.AgentType),
		AgentID:     req.AgentID,
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) handleDelete(w http.ResponseWriter, r *http.Request, categoryID string) {
	principal := middleware.GetPrincipal(r)
	agentType, agentID := agentFromQuery(r)
	deleteTodos := r.URL.Query().Get("delete_todos") == "true"

	if err := h.svc.Delete(r.Context(), principal, categoryID, agentType, agentID, deleteTodos); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	agentType, agentID := agentFromQuery(r)

	categories, err := h.svc.List(r.Context(), principal, agentType, agentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, categories)
}
