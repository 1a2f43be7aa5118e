package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCancelled SessionStatus = "cancelled"
	SessionStatusCompleted SessionStatus = "completed"
)

type JoinPolicy string

const (
	JoinPolicyOpen       JoinPolicy = "open"
	JoinPolicyCurated    JoinPolicy = "curated"
	JoinPolicyInviteOnly JoinPolicy = "invite_only"
)

// Session is a scheduled group activity with a capacity limit.
//
// CurrentParticipants is derived state: it must always equal the number of
// confirmed membership entries for the session. Only the capacity admission
// paths in the session repository may write it.
type Session struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatorID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"creator_id"`
	ActivityType        string         `gorm:"type:varchar(64);not null" json:"activity_type"`
	Title               string         `gorm:"type:varchar(256);not null" json:"title"`
	Description         string         `gorm:"type:text" json:"description,omitempty"`
	ScheduledAt         time.Time      `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes     int            `gorm:"not null" json:"duration_minutes"`
	LocationName        string         `gorm:"type:varchar(256)" json:"location_name,omitempty"`
	Latitude            *float64       `json:"latitude,omitempty"`
	Longitude           *float64       `json:"longitude,omitempty"`
	MaxParticipants     int            `gorm:"not null" json:"max_participants"`
	CurrentParticipants int            `gorm:"not null;default:0" json:"current_participants"`
	JoinPolicy          JoinPolicy     `gorm:"type:varchar(16);not null;default:'open'" json:"join_policy"`
	Status              SessionStatus  `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	SkillLevel          string         `gorm:"type:varchar(32)" json:"skill_level,omitempty"`
	GenderPreference    string         `gorm:"type:varchar(16)" json:"gender_preference,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Creator *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

func (Session) TableName() string { return "sessions" }

// EndsAt is the scheduled end of the activity.
func (s *Session) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// IsPast reports whether the scheduled end has passed.
func (s *Session) IsPast(now time.Time) bool {
	return now.After(s.EndsAt())
}

func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// SessionSummary is the shape returned to invite-link resolvers: enough to
// render a join page without exposing member contact data.
type SessionSummary struct {
	ID                  uuid.UUID     `json:"id"`
	Title               string        `json:"title"`
	ActivityType        string        `json:"activity_type"`
	ScheduledAt         time.Time     `json:"scheduled_at"`
	DurationMinutes     int           `json:"duration_minutes"`
	LocationName        string        `json:"location_name,omitempty"`
	MaxParticipants     int           `json:"max_participants"`
	CurrentParticipants int           `json:"current_participants"`
	JoinPolicy          JoinPolicy    `json:"join_policy"`
	Status              SessionStatus `json:"status"`
}

func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:                  s.ID,
		Title:               s.Title,
		ActivityType:        s.ActivityType,
		ScheduledAt:         s.ScheduledAt,
		DurationMinutes:     s.DurationMinutes,
		LocationName:        s.LocationName,
		MaxParticipants:     s.MaxParticipants,
		CurrentParticipants: s.CurrentParticipants,
		JoinPolicy:          s.JoinPolicy,
		Status:              s.Status,
	}
}
