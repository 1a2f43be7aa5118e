package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gatherly/sessionhub/internal/model"
)

type pgAttendanceRepository struct {
	db *gorm.DB
}

func NewPGAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &pgAttendanceRepository{db: db}
}

func (r *pgAttendanceRepository) Upsert(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"attended", "marked_by", "updated_at"}),
		}).
		Create(record).Error
}

func (r *pgAttendanceRepository) Get(ctx context.Context, sessionID, userID uuid.UUID) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *pgAttendanceRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
