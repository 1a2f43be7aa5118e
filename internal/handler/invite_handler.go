package handler

import (
	"github.com/gin-gonic/gin"

	"gatherly/sessionhub/internal/service"
	"gatherly/sessionhub/pkg/response"
)

type InviteHandler struct {
	inviteService service.InviteService
}

func NewInviteHandler(inviteService service.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// Create issues a shareable invite link for a session.
func (h *InviteHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invite, err := h.inviteService.Issue(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, invite)
}

// Resolve returns the session summary behind an invite link. Public: the
// recipient is usually not signed in yet.
func (h *InviteHandler) Resolve(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "missing token")
		return
	}

	summary, err := h.inviteService.Resolve(c.Request.Context(), token)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, summary)
}
