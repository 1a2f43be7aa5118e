package handler

import (
	"github.com/gin-gonic/gin"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/service"
	"gatherly/sessionhub/pkg/response"
)

type MembershipHandler struct {
	membershipService service.MembershipService
}

func NewMembershipHandler(membershipService service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

type JoinRequest struct {
	InviteToken string `json:"invite_token"`
}

// Join handles a registered user's join attempt.
func (h *MembershipHandler) Join(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req JoinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	entry, err := h.membershipService.Join(c.Request.Context(), sessionID,
		model.RegisteredIdentity(userID), req.InviteToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, entry)
}

type GuestJoinRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	InviteToken string `json:"invite_token"`
}

// GuestJoin handles a join attempt by an unregistered participant.
func (h *MembershipHandler) GuestJoin(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req GuestJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	entry, err := h.membershipService.Join(c.Request.Context(), sessionID,
		model.GuestIdentity(req.Name, req.Phone, req.Email), req.InviteToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, entry)
}

func (h *MembershipHandler) Leave(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.membershipService.Leave(c.Request.Context(), sessionID,
		model.RegisteredIdentity(userID)); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *MembershipHandler) ListMembers(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.membershipService.ListMembers(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, members)
}

func (h *MembershipHandler) Approve(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseIDParam(c, "entry_id")
	if !ok {
		return
	}

	entry, err := h.membershipService.Approve(c.Request.Context(), sessionID, entryID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, entry)
}

func (h *MembershipHandler) Reject(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseIDParam(c, "entry_id")
	if !ok {
		return
	}

	if err := h.membershipService.Reject(c.Request.Context(), sessionID, entryID, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *MembershipHandler) Kick(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseIDParam(c, "entry_id")
	if !ok {
		return
	}

	if err := h.membershipService.Kick(c.Request.Context(), sessionID, entryID, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
