package handler

import (
	"net/http"
	"strings"

	"github.com/teamtodo/teamtodo-api/internal/middleware"
	"github.com/teamtodo/teamtodo-api/internal/service"
)

type InvitationHandler struct {
	svc *service.InvitationService
}

func NewInvitationHandler(svc *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

// ServeHTTP routes /api/v1/invitations/{id} and
// /api/v1/invitations/{id}/accept.
func (h *InvitationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/invitations")
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	invitationID := parts[0]
	subPath := ""
	if len(parts) > 1 {
		subPath = parts[1]
	}

	if invitationID == "" {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return
	}

	switch subPath {
	case "":
		if r.Method != http.MethodDelete {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleDelete(w, r, invitationID)
	case "accept":
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleAccept(w, r, invitationID)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	}
}

func (h *InvitationHandler) handleAccept(w http.ResponseWriter, r *http.Request, invitationID string) {
	principal := middleware.GetPrincipal(r)

	team, err := h.svc.Accept(r.Context(), principal, invitationID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, team)
}

func (h *InvitationHandler) handleDelete(w http.ResponseWriter, r *http.Request, invitationID string) {
	principal := middleware.GetPrincipal(r)

	if err := h.svc.Delete(r.Context(), principal, invitationID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
