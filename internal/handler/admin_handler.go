package handler

import (
	"github.com/gin-gonic/gin"

	"gatherly/sessionhub/internal/service"
	"gatherly/sessionhub/pkg/response"
)

// AdminHandler exposes the administrative collaborator surface: session
// removal and attendance overrides.
type AdminHandler struct {
	sessionService service.SessionService
}

func NewAdminHandler(sessionService service.SessionService) *AdminHandler {
	return &AdminHandler{sessionService: sessionService}
}

// RemoveSession removes a session and its ledger entries regardless of creator.
func (h *AdminHandler) RemoveSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.sessionService.AdminRemove(c.Request.Context(), sessionID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
