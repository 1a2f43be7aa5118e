package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatherly/sessionhub/internal/model"
)

type pgInviteTokenRepository struct {
	db *gorm.DB
}

func NewPGInviteTokenRepository(db *gorm.DB) InviteTokenRepository {
	return &pgInviteTokenRepository{db: db}
}

func (r *pgInviteTokenRepository) Create(ctx context.Context, token *model.InviteToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *pgInviteTokenRepository) GetByToken(ctx context.Context, token string) (*model.InviteToken, error) {
	var invite model.InviteToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invite, nil
}

func (r *pgInviteTokenRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.InviteToken, error) {
	var tokens []model.InviteToken
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
