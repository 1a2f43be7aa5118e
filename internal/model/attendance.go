package model

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord is a post-event fact set by the host (or an admin):
// whether a registered participant actually showed up. It gates recap upload
// and rating eligibility.
type AttendanceRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Attended  bool      `gorm:"not null" json:"attended"`
	MarkedBy  uuid.UUID `gorm:"type:uuid;not null" json:"marked_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AttendanceRecord) TableName() string { return "attendance_records" }
