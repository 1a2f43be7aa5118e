package handler

import (
	"github.com/gin-gonic/gin"

	"gatherly/sessionhub/internal/service"
	"gatherly/sessionhub/pkg/response"
)

type AttendanceHandler struct {
	attendanceService service.AttendanceService
}

func NewAttendanceHandler(attendanceService service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

type MarkAttendanceRequest struct {
	Marks []service.AttendanceMark `json:"marks" binding:"required,min=1"`
}

// Mark records attendance facts; the host calls this after the session ends.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	h.mark(c, false)
}

// AdminMark is the administrative override: any session, any time.
func (h *AttendanceHandler) AdminMark(c *gin.Context) {
	h.mark(c, true)
}

func (h *AttendanceHandler) mark(c *gin.Context, isAdmin bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.attendanceService.Mark(c.Request.Context(), sessionID, req.Marks, userID, isAdmin); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// Eligibility reports the caller's recap-upload and rating permissions for a
// session.
func (h *AttendanceHandler) Eligibility(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	eligibility, err := h.attendanceService.Eligibility(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, eligibility)
}
