package repository

import (
	"context"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
)

type ReviewRepository interface {
	// Create writes a review; ErrDuplicateEntry when the reviewer already
	// rated this session.
	Create(ctx context.Context, review *model.Review) error
	Get(ctx context.Context, sessionID, reviewerID uuid.UUID) (*model.Review, error)
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]model.Review, error)
}
