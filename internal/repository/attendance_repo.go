package repository

import (
	"context"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
)

type AttendanceRepository interface {
	// Upsert writes the attendance fact, replacing an earlier mark for the
	// same (session, user).
	Upsert(ctx context.Context, record *model.AttendanceRecord) error
	Get(ctx context.Context, sessionID, userID uuid.UUID) (*model.AttendanceRecord, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AttendanceRecord, error)
}
