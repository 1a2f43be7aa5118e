package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStatus int

const (
	UserStatusActive   UserStatus = 1
	UserStatusDisabled UserStatus = 2
	UserStatusBanned   UserStatus = 3
)

// User is the registered-identity anchor. Credentials live with the external
// identity provider; this row only carries profile data referenced by
// sessions, attendance, and reviews.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DisplayName string         `gorm:"type:varchar(128);not null" json:"display_name"`
	Phone       string         `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Email       string         `gorm:"type:varchar(256)" json:"email,omitempty"`
	Status      UserStatus     `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }
