package service

import "errors"

var (
	ErrValidation          = errors.New("invalid request")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrPolicyViolation     = errors.New("join policy requires a valid invite")
	ErrCapacityFull        = errors.New("session is full")
	ErrDuplicateMembership = errors.New("already a member of this session")
	ErrSessionInactive     = errors.New("session is cancelled or completed")
	ErrTokenNotFound       = errors.New("invite token not found")
	ErrTokenExpired        = errors.New("invite token expired")
	ErrNotFound            = errors.New("not found")
)
