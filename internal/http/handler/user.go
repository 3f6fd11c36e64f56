package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/teamtodo/teamtodo-api/internal/middleware"
	"github.com/teamtodo/teamtodo-api/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ServeHTTP routes /api/v1/users/me and /api/v1/users/me/sync.
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/users")
	path = strings.Trim(path, "/")

	switch path {
	case "me":
		switch r.Method {
		case http.MethodGet:
			h.handleMe(w, r)
		case http.MethodPut:
			h.handleUpdateProfile(w, r)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		}
	case "me/sync":
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleSync(w, r)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	}
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	out, err := h.svc.Me(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, out)
}

type updateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

func (h *UserHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), principal, service.UpdateProfileInput{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleSync(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	user, err := h.svc.Sync(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, user)
}
