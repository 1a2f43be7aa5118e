package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/repository"
	"gatherly/sessionhub/internal/service"
	"gatherly/sessionhub/pkg/response"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

type CreateSessionRequest struct {
	ActivityType     string    `json:"activity_type" binding:"required"`
	Title            string    `json:"title" binding:"required"`
	Description      string    `json:"description"`
	ScheduledAt      time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes  int       `json:"duration_minutes" binding:"required,gt=0"`
	LocationName     string    `json:"location_name"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	MaxParticipants  int       `json:"max_participants" binding:"required,gte=2"`
	JoinPolicy       string    `json:"join_policy"`
	SkillLevel       string    `json:"skill_level"`
	GenderPreference string    `json:"gender_preference"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), service.CreateSessionInput{
		CreatorID:        userID,
		ActivityType:     req.ActivityType,
		Title:            req.Title,
		Description:      req.Description,
		ScheduledAt:      req.ScheduledAt,
		DurationMinutes:  req.DurationMinutes,
		LocationName:     req.LocationName,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		MaxParticipants:  req.MaxParticipants,
		JoinPolicy:       model.JoinPolicy(req.JoinPolicy),
		SkillLevel:       req.SkillLevel,
		GenderPreference: req.GenderPreference,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	session, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

func (h *SessionHandler) List(c *gin.Context) {
	filter := repository.SessionFilter{
		ActivityType: c.Query("activity_type"),
		Status:       model.SessionStatus(c.Query("status")),
	}
	if creator := c.Query("creator_id"); creator != "" {
		id, err := uuid.Parse(creator)
		if err != nil {
			response.BadRequest(c, "invalid creator_id")
			return
		}
		filter.CreatorID = id
	}

	sessions, err := h.sessionService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, sessions)
}

type UpdateSessionRequest struct {
	ActivityType     *string    `json:"activity_type"`
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	ScheduledAt      *time.Time `json:"scheduled_at"`
	DurationMinutes  *int       `json:"duration_minutes"`
	LocationName     *string    `json:"location_name"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	MaxParticipants  *int       `json:"max_participants"`
	JoinPolicy       *string    `json:"join_policy"`
	SkillLevel       *string    `json:"skill_level"`
	GenderPreference *string    `json:"gender_preference"`
}

func (h *SessionHandler) Update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	patch := service.SessionPatch{
		ActivityType:     req.ActivityType,
		Title:            req.Title,
		Description:      req.Description,
		ScheduledAt:      req.ScheduledAt,
		DurationMinutes:  req.DurationMinutes,
		LocationName:     req.LocationName,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		MaxParticipants:  req.MaxParticipants,
		SkillLevel:       req.SkillLevel,
		GenderPreference: req.GenderPreference,
	}
	if req.JoinPolicy != nil {
		policy := model.JoinPolicy(*req.JoinPolicy)
		patch.JoinPolicy = &policy
	}

	session, err := h.sessionService.Update(c.Request.Context(), id, patch, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.sessionService.Cancel(c.Request.Context(), id, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
