package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteToken is a shareable, time-limited join credential. Tokens are
// multi-use links: anyone holding the token may join until ExpiresAt, and the
// row is never mutated afterwards (expiry is checked lazily at resolve time).
type InviteToken struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	Token     string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	IssuerID  uuid.UUID      `gorm:"type:uuid;not null" json:"issuer_id"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (InviteToken) TableName() string { return "invite_tokens" }

func (t *InviteToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
