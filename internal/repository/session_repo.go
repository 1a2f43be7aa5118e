package repository

import (
	"context"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
)

// SessionFilter narrows List results; zero values mean "no filter".
type SessionFilter struct {
	Status       model.SessionStatus
	ActivityType string
	CreatorID    uuid.UUID
	Limit        int
	Offset       int
}

// SessionRepository owns the canonical session rows. AdmitConfirmed and
// Release are the only code paths allowed to touch current_participants.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	List(ctx context.Context, filter SessionFilter) ([]model.Session, error)
	Update(ctx context.Context, session *model.Session) error

	// SetStatus transitions the status and reports whether a row changed
	// (false when the session was already in that status or absent).
	SetStatus(ctx context.Context, id uuid.UUID, from, to model.SessionStatus) (bool, error)

	// AdmitConfirmed atomically verifies status == active and
	// current_participants < max_participants, then increments the counter.
	// Returns ErrNotFound, ErrSessionInactive, or ErrCapacityFull when the
	// guarded update matches no row.
	AdmitConfirmed(ctx context.Context, id uuid.UUID) error

	// Release atomically decrements the counter, floored at zero.
	Release(ctx context.Context, id uuid.UUID) error

	// ResetParticipants zeroes the counter (cancellation cascade).
	ResetParticipants(ctx context.Context, id uuid.UUID) error

	Delete(ctx context.Context, id uuid.UUID) error
}
