package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipStatus string

const (
	MembershipStatusPending   MembershipStatus = "pending"
	MembershipStatusConfirmed MembershipStatus = "confirmed"
)

// MembershipEntry records one participant's relationship to a session.
// IdentityKey is the dedup key derived from the identity (account id for
// registered users, hashed contact for guests); the partial unique index on
// (session_id, identity_key) makes duplicate joins lose at the store even
// under concurrency.
type MembershipEntry struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"session_id"`
	IdentityKey string           `gorm:"type:varchar(64);not null" json:"-"`
	UserID      *uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	GuestName   string           `gorm:"type:varchar(128)" json:"guest_name,omitempty"`
	GuestPhone  string           `gorm:"type:varchar(32)" json:"guest_phone,omitempty"`
	GuestEmail  string           `gorm:"type:varchar(256)" json:"guest_email,omitempty"`
	Status      MembershipStatus `gorm:"type:varchar(16);not null" json:"status"`
	JoinedAt    time.Time        `gorm:"not null" json:"joined_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

func (MembershipEntry) TableName() string { return "membership_entries" }

// NewMembershipEntry builds an entry for the given identity; the caller sets
// the status the join policy decided.
func NewMembershipEntry(sessionID uuid.UUID, identity Identity, status MembershipStatus, now time.Time) *MembershipEntry {
	entry := &MembershipEntry{
		SessionID:   sessionID,
		IdentityKey: identity.Key(),
		Status:      status,
		JoinedAt:    now,
	}
	if identity.IsRegistered() {
		id := identity.UserID
		entry.UserID = &id
	} else {
		entry.GuestName = identity.GuestName
		entry.GuestPhone = identity.GuestPhone
		entry.GuestEmail = identity.GuestEmail
	}
	return entry
}

// Identity reconstructs the tagged union from the stored columns.
func (e *MembershipEntry) Identity() Identity {
	if e.UserID != nil {
		return RegisteredIdentity(*e.UserID)
	}
	return GuestIdentity(e.GuestName, e.GuestPhone, e.GuestEmail)
}

func (e *MembershipEntry) IsConfirmed() bool {
	return e.Status == MembershipStatusConfirmed
}
