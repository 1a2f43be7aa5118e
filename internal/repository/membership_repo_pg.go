package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatherly/sessionhub/internal/model"
)

type pgMembershipRepository struct {
	db *gorm.DB
}

func NewPGMembershipRepository(db *gorm.DB) MembershipRepository {
	return &pgMembershipRepository{db: db}
}

func (r *pgMembershipRepository) Find(ctx context.Context, sessionID uuid.UUID, identityKey string) (*model.MembershipEntry, error) {
	var entry model.MembershipEntry
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND identity_key = ?", sessionID, identityKey).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *pgMembershipRepository) GetByID(ctx context.Context, sessionID, entryID uuid.UUID) (*model.MembershipEntry, error) {
	var entry model.MembershipEntry
	err := r.db.WithContext(ctx).
		Where("id = ? AND session_id = ?", entryID, sessionID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *pgMembershipRepository) Insert(ctx context.Context, entry *model.MembershipEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEntry
	}
	return err
}

func (r *pgMembershipRepository) SetStatus(ctx context.Context, entryID uuid.UUID, from, to model.MembershipStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.MembershipEntry{}).
		Where("id = ? AND status = ?", entryID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pgMembershipRepository) Remove(ctx context.Context, sessionID uuid.UUID, identityKey string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND identity_key = ?", sessionID, identityKey).
		Delete(&model.MembershipEntry{}).Error
}

func (r *pgMembershipRepository) RemoveBySession(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&model.MembershipEntry{}).Error
}

func (r *pgMembershipRepository) List(ctx context.Context, sessionID uuid.UUID, status model.MembershipStatus) ([]model.MembershipEntry, error) {
	q := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("joined_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var entries []model.MembershipEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *pgMembershipRepository) ListConfirmed(ctx context.Context, sessionID uuid.UUID) ([]model.MembershipEntry, error) {
	return r.List(ctx, sessionID, model.MembershipStatusConfirmed)
}

func (r *pgMembershipRepository) CountConfirmed(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.MembershipEntry{}).
		Where("session_id = ? AND status = ?", sessionID, model.MembershipStatusConfirmed).
		Count(&count).Error
	return count, err
}
