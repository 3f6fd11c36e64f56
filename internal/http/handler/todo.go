package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/teamtodo/teamtodo-api/internal/middleware"
	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/service"
)

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// ServeHTTP routes /api/v1/todos and /api/v1/todos/{id}[/done]
func (h *TodoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/todos")
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	todoID := parts[0]
	subPath := ""
	if len(parts) > 1 {
		subPath = parts[1]
	}

	// /api/v1/todos/{id}/done
	if todoID != "" && subPath == "done" {
		h.handleDone(w, r, todoID)
		return
	}

	// /api/v1/todos/{id}
	if todoID != "" {
		switch r.Method {
		case http.MethodPut:
			h.handleUpdate(w, r, todoID)
		case http.MethodDelete:
			h.handleDelete(w, r, todoID)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		}
		return
	}

	// /api/v1/todos
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

type todoRequest struct {
	AgentType       string   `json:"agent_type"`
	AgentID         string   `json:"agent_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DueAt           *string  `json:"due_at,omitempty"`
	CategoryIDs     []string `json:"category_ids,omitempty"`
	AssignedUserIDs []string `json:"assigned_user_ids,omitempty"`
}

func (req todoRequest) toInput() service.TodoInput {
	return service.TodoInput{
		AgentType:       model.AgentType(req.AgentType),
		AgentID:         req.AgentID,
		Title:           req.Title,
		Description:     req.Description,
		DueAt:           req.DueAt,
		CategoryIDs:     req.CategoryIDs,
		AssignedUserIDs: req.AssignedUserIDs,
	}
}

func (h *TodoHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	todo, err := h.svc.Create(r.Context(), principal, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) handleUpdate(w http.ResponseWriter, r *http.Request, todoID string) {
	principal := middleware.GetPrincipal(r)

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	todo, err := h.svc.Update(r.Context(), principal, todoID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) handleDelete(w http.ResponseWriter, r *http.Request, todoID string) {
	principal := middleware.GetPrincipal(r)
	agentType, agentID := agentFromQuery(r)

	if err := h.svc.Delete(r.Context(), principal, todoID, agentType, agentID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDone marks the todo done on POST and undoes it on DELETE.
func (h *TodoHandler) handleDone(w http.ResponseWriter, r *http.Request, todoID string) {
	principal := middleware.GetPrincipal(r)
	agentType, agentID := agentFromQuery(r)

	var todo model.Todo
	var err error
	switch r.Method {
	case http.MethodPost:
		todo, err = h.svc.MarkDone(r.Context(), principal, todoID, agentType, agentID)
	case http.MethodDelete:
		todo, err = h.svc.Undo(r.Context(), principal, todoID, agentType, agentID)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) handleList(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)
	agentType, agentID := agentFromQuery(r)

	var done *bool
	switch r.URL.Query().Get("done") {
	case "":
	case "true":
		v := true
		done = &v
	case "false":
		v := false
		done = &v
	default:
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "done must be 'true' or 'false'")
		return
	}

	result, err := h.svc.List(r.Context(), principal, agentType, agentID, done)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func agentFromQuery(r *http.Request) (model.AgentType, string) {
	q := r.URL.Query()
	return model.AgentType(q.Get("agent_type")), q.Get("agent_id")
}
