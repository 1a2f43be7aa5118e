package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatherly/sessionhub/internal/model"
)

type pgSessionRepository struct {
	db *gorm.DB
}

func NewPGSessionRepository(db *gorm.DB) SessionRepository {
	return &pgSessionRepository{db: db}
}

func (r *pgSessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *pgSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *pgSessionRepository) List(ctx context.Context, filter SessionFilter) ([]model.Session, error) {
	q := r.db.WithContext(ctx).Model(&model.Session{}).Order("scheduled_at ASC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ActivityType != "" {
		q = q.Where("activity_type = ?", filter.ActivityType)
	}
	if filter.CreatorID != uuid.Nil {
		q = q.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var sessions []model.Session
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update persists the editable session fields. The occupancy counter and the
// status column are owned by the admission and cancellation paths; writing
// them here would clobber a join that committed after the caller's read.
func (r *pgSessionRepository) Update(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).
		Omit("current_participants", "status").
		Save(session).Error
}

func (r *pgSessionRepository) SetStatus(ctx context.Context, id uuid.UUID, from, to model.SessionStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pgSessionRepository) AdmitConfirmed(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND status = ? AND current_participants < max_participants",
			id, model.SessionStatusActive).
		UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// The guard rejected the update; re-read inside the same transaction to
	// tell the caller which invariant blocked admission.
	var session model.Session
	if err := r.db.WithContext(ctx).
		Select("status", "current_participants", "max_participants").
		First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if session.Status != model.SessionStatusActive {
		return ErrSessionInactive
	}
	return ErrCapacityFull
}

func (r *pgSessionRepository) Release(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND current_participants > 0", id).
		UpdateColumn("current_participants", gorm.Expr("current_participants - 1")).
		Error
}

func (r *pgSessionRepository) ResetParticipants(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ?", id).
		UpdateColumn("current_participants", 0).
		Error
}

func (r *pgSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Session{}, "id = ?", id).Error
}
