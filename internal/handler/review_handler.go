package handler

import (
	"github.com/gin-gonic/gin"

	"gatherly/sessionhub/internal/service"
	"gatherly/sessionhub/pkg/response"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), sessionID, userID, req.Rating, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, review)
}

// ListByHost returns the reviews received by a host.
func (h *ReviewHandler) ListByHost(c *gin.Context) {
	hostID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListByHost(c.Request.Context(), hostID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, reviews)
}
