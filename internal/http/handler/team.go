package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/teamtodo/teamtodo-api/internal/middleware"
	"github.com/teamtodo/teamtodo-api/internal/service"
)

type TeamHandler struct {
	svc         *service.TeamService
	invitations *service.InvitationService
}

func NewTeamHandler(svc *service.TeamService, invitations *service.InvitationService) *TeamHandler {
	return &TeamHandler{svc: svc, invitations: invitations}
}

// ServeHTTP routes /api/v1/teams, /api/v1/teams/{id},
// /api/v1/teams/{id}/members and /api/v1/teams/{id}/invitations.
func (h *TeamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/teams")
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	teamID := parts[0]
	subPath := ""
	if len(parts) > 1 {
		subPath = parts[1]
	}

	if teamID == "" {
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleCreate(w, r)
		return
	}

	switch subPath {
	case "":
		if r.Method != http.MethodPut {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleUpdate(w, r, teamID)
	case "members":
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleMembers(w, r, teamID)
	case "invitations":
		switch r.Method {
		case http.MethodGet:
			h.handleListInvitations(w, r, teamID)
		case http.MethodPost:
			h.handleCreateInvitation(w, r, teamID)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		}
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	}
}

type teamProfileRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *TeamHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	var req teamProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	team, err := h.svc.Create(r.Context(), principal, req.Name, req.Color)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) handleUpdate(w http.ResponseWriter, r *http.Request, teamID string) {
	principal := middleware.GetPrincipal(r)

	var req teamProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	team, err := h.svc.UpdateProfile(r.Context(), principal, teamID, req.Name, req.Color)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) handleMembers(w http.ResponseWriter, r *http.Request, teamID string) {
	principal := middleware.GetPrincipal(r)

	members, err := h.svc.Members(r.Context(), principal, teamID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, members)
}

type createInvitationRequest struct {
	Email *string `json:"email,omitempty"`
}

func (h *TeamHandler) handleCreateInvitation(w http.ResponseWriter, r *http.Request, teamID string) {
	principal := middleware.GetPrincipal(r)

	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	out, err := h.invitations.Create(r.Context(), principal, teamID, req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, out)
}

func (h *TeamHandler) handleListInvitations(w http.ResponseWriter, r *http.Request, teamID string) {
	principal := middleware.GetPrincipal(r)

	invitations, err := h.invitations.List(r.Context(), principal, teamID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, invitations)
}
