package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one backing database and provides the
// unit-of-work boundary. Inside InTx every repository obtained from the
// passed Store is bound to the same transaction, so a membership write and
// the capacity counter update commit or fail together.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Memberships() MembershipRepository
	Invites() InviteTokenRepository
	Attendance() AttendanceRepository
	Reviews() ReviewRepository

	InTx(ctx context.Context, fn func(tx Store) error) error
}

type pgStore struct {
	db *gorm.DB
}

func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Users() UserRepository             { return &pgUserRepository{db: s.db} }
func (s *pgStore) Sessions() SessionRepository       { return &pgSessionRepository{db: s.db} }
func (s *pgStore) Memberships() MembershipRepository { return &pgMembershipRepository{db: s.db} }
func (s *pgStore) Invites() InviteTokenRepository    { return &pgInviteTokenRepository{db: s.db} }
func (s *pgStore) Attendance() AttendanceRepository  { return &pgAttendanceRepository{db: s.db} }
func (s *pgStore) Reviews() ReviewRepository         { return &pgReviewRepository{db: s.db} }

func (s *pgStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}
