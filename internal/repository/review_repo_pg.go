package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatherly/sessionhub/internal/model"
)

type pgReviewRepository struct {
	db *gorm.DB
}

func NewPGReviewRepository(db *gorm.DB) ReviewRepository {
	return &pgReviewRepository{db: db}
}

func (r *pgReviewRepository) Create(ctx context.Context, review *model.Review) error {
	err := r.db.WithContext(ctx).Create(review).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEntry
	}
	return err
}

func (r *pgReviewRepository) Get(ctx context.Context, sessionID, reviewerID uuid.UUID) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND reviewer_id = ?", sessionID, reviewerID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *pgReviewRepository) ListByHost(ctx context.Context, hostID uuid.UUID) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
