package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gatherly/sessionhub/internal/handler/middleware"
	"gatherly/sessionhub/internal/service"
	jwtpkg "gatherly/sessionhub/pkg/jwt"
	"gatherly/sessionhub/pkg/response"
)

var ErrNoClaims = errors.New("claims not found in context")

func getUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	claimsVal, exists := c.Get(middleware.ContextKeyUserClaims)
	if !exists {
		return uuid.Nil, ErrNoClaims
	}
	claims, ok := claimsVal.(*jwtpkg.Claims)
	if !ok {
		return uuid.Nil, ErrNoClaims
	}
	return uuid.Parse(claims.Subject)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrPolicyViolation):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrCapacityFull),
		errors.Is(err, service.ErrDuplicateMembership),
		errors.Is(err, service.ErrSessionInactive):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrTokenExpired):
		response.Gone(c, err.Error())
	case errors.Is(err, service.ErrTokenNotFound),
		errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	default:
		response.InternalError(c, "internal error")
	}
}
