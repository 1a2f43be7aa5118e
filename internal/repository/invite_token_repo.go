package repository

import (
	"context"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
)

type InviteTokenRepository interface {
	Create(ctx context.Context, token *model.InviteToken) error
	GetByToken(ctx context.Context, token string) (*model.InviteToken, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.InviteToken, error)
}
