package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a participant's post-event rating of the host. At most one per
// (session, reviewer), enforced by a partial unique index.
type Review struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	ReviewerID uuid.UUID      `gorm:"type:uuid;not null" json:"reviewer_id"`
	HostID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"host_id"`
	Rating     int            `gorm:"not null" json:"rating"`
	Comment    string         `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Review) TableName() string { return "reviews" }
