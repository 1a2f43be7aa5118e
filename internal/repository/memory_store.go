package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
)

// memoryData is the backing dataset of the in-memory store.
type memoryData struct {
	users       map[uuid.UUID]model.User
	sessions    map[uuid.UUID]model.Session
	memberships map[uuid.UUID]model.MembershipEntry
	invites     map[string]model.InviteToken
	attendance  map[string]model.AttendanceRecord // sessionID|userID
	reviews     map[string]model.Review           // sessionID|reviewerID
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:       make(map[uuid.UUID]model.User),
		sessions:    make(map[uuid.UUID]model.Session),
		memberships: make(map[uuid.UUID]model.MembershipEntry),
		invites:     make(map[string]model.InviteToken),
		attendance:  make(map[string]model.AttendanceRecord),
		reviews:     make(map[string]model.Review),
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.memberships {
		c.memberships[k] = v
	}
	for k, v := range d.invites {
		c.invites[k] = v
	}
	for k, v := range d.attendance {
		c.attendance[k] = v
	}
	for k, v := range d.reviews {
		c.reviews[k] = v
	}
	return c
}

func attendanceKey(sessionID, userID uuid.UUID) string {
	return sessionID.String() + "|" + userID.String()
}

// memAccess serializes access to the dataset. The root store locks per call;
// a transaction view runs lock-free on a clone while the root holds the lock.
type memAccess interface {
	with(fn func(d *memoryData) error) error
}

// memoryStore is the in-memory Store used for local development and tests.
// A single mutex serializes all mutations, which gives the same atomicity
// guarantees the Postgres store gets from conditional updates and
// transactions.
type memoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

func NewMemoryStore() Store {
	return &memoryStore{data: newMemoryData()}
}

func (s *memoryStore) with(fn func(d *memoryData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *memoryStore) InTx(_ context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Run the body against a clone; swap it in only on success so a failed
	// transaction leaves no partial effects.
	clone := s.data.clone()
	if err := fn(&txStore{data: clone}); err != nil {
		return err
	}
	s.data = clone
	return nil
}

func (s *memoryStore) Users() UserRepository             { return &memUserRepository{s} }
func (s *memoryStore) Sessions() SessionRepository       { return &memSessionRepository{s} }
func (s *memoryStore) Memberships() MembershipRepository { return &memMembershipRepository{s} }
func (s *memoryStore) Invites() InviteTokenRepository    { return &memInviteTokenRepository{s} }
func (s *memoryStore) Attendance() AttendanceRepository  { return &memAttendanceRepository{s} }
func (s *memoryStore) Reviews() ReviewRepository         { return &memReviewRepository{s} }

// txStore is the transaction view; the owning memoryStore holds the lock for
// the duration, so access is direct.
type txStore struct {
	data *memoryData
}

func (s *txStore) with(fn func(d *memoryData) error) error {
	return fn(s.data)
}

// Nested transactions join the ambient one.
func (s *txStore) InTx(_ context.Context, fn func(tx Store) error) error {
	return fn(s)
}

func (s *txStore) Users() UserRepository             { return &memUserRepository{s} }
func (s *txStore) Sessions() SessionRepository       { return &memSessionRepository{s} }
func (s *txStore) Memberships() MembershipRepository { return &memMembershipRepository{s} }
func (s *txStore) Invites() InviteTokenRepository    { return &memInviteTokenRepository{s} }
func (s *txStore) Attendance() AttendanceRepository  { return &memAttendanceRepository{s} }
func (s *txStore) Reviews() ReviewRepository         { return &memReviewRepository{s} }

type memUserRepository struct {
	access memAccess
}

func (r *memUserRepository) Create(_ context.Context, user *model.User) error {
	return r.access.with(func(d *memoryData) error {
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		now := time.Now()
		user.CreatedAt, user.UpdatedAt = now, now
		d.users[user.ID] = *user
		return nil
	})
}

func (r *memUserRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	var out *model.User
	err := r.access.with(func(d *memoryData) error {
		user, ok := d.users[id]
		if !ok {
			return ErrNotFound
		}
		out = &user
		return nil
	})
	return out, err
}

type memSessionRepository struct {
	access memAccess
}

func (r *memSessionRepository) Create(_ context.Context, session *model.Session) error {
	return r.access.with(func(d *memoryData) error {
		if session.ID == uuid.Nil {
			session.ID = uuid.New()
		}
		now := time.Now()
		session.CreatedAt, session.UpdatedAt = now, now
		d.sessions[session.ID] = *session
		return nil
	})
}

func (r *memSessionRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	var out *model.Session
	err := r.access.with(func(d *memoryData) error {
		session, ok := d.sessions[id]
		if !ok {
			return ErrNotFound
		}
		out = &session
		return nil
	})
	return out, err
}

func (r *memSessionRepository) List(_ context.Context, filter SessionFilter) ([]model.Session, error) {
	var out []model.Session
	err := r.access.with(func(d *memoryData) error {
		for _, session := range d.sessions {
			if filter.Status != "" && session.Status != filter.Status {
				continue
			}
			if filter.ActivityType != "" && session.ActivityType != filter.ActivityType {
				continue
			}
			if filter.CreatorID != uuid.Nil && session.CreatorID != filter.CreatorID {
				continue
			}
			out = append(out, session)
		}
		return nil
	})
	return out, err
}

// Update mirrors the pg contract: the occupancy counter and the status column
// stay owned by the admission and cancellation paths, so a stale read in the
// caller can never clobber them.
func (r *memSessionRepository) Update(_ context.Context, session *model.Session) error {
	return r.access.with(func(d *memoryData) error {
		stored, ok := d.sessions[session.ID]
		if !ok {
			return ErrNotFound
		}
		session.CurrentParticipants = stored.CurrentParticipants
		session.Status = stored.Status
		session.UpdatedAt = time.Now()
		d.sessions[session.ID] = *session
		return nil
	})
}

func (r *memSessionRepository) SetStatus(_ context.Context, id uuid.UUID, from, to model.SessionStatus) (bool, error) {
	changed := false
	err := r.access.with(func(d *memoryData) error {
		session, ok := d.sessions[id]
		if !ok || session.Status != from {
			return nil
		}
		session.Status = to
		session.UpdatedAt = time.Now()
		d.sessions[id] = session
		changed = true
		return nil
	})
	return changed, err
}

func (r *memSessionRepository) AdmitConfirmed(_ context.Context, id uuid.UUID) error {
	return r.access.with(func(d *memoryData) error {
		session, ok := d.sessions[id]
		if !ok {
			return ErrNotFound
		}
		if session.Status != model.SessionStatusActive {
			return ErrSessionInactive
		}
		if session.CurrentParticipants >= session.MaxParticipants {
			return ErrCapacityFull
		}
		session.CurrentParticipants++
		d.sessions[id] = session
		return nil
	})
}

func (r *memSessionRepository) Release(_ context.Context, id uuid.UUID) error {
	return r.access.with(func(d *memoryData) error {
		session, ok := d.sessions[id]
		if !ok || session.CurrentParticipants == 0 {
			return nil
		}
		session.CurrentParticipants--
		d.sessions[id] = session
		return nil
	})
}

func (r *memSessionRepository) ResetParticipants(_ context.Context, id uuid.UUID) error {
	return r.access.with(func(d *memoryData) error {
		session, ok := d.sessions[id]
		if !ok {
			return nil
		}
		session.CurrentParticipants = 0
		d.sessions[id] = session
		return nil
	})
}

func (r *memSessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.access.with(func(d *memoryData) error {
		delete(d.sessions, id)
		return nil
	})
}

type memMembershipRepository struct {
	access memAccess
}

func (r *memMembershipRepository) Find(_ context.Context, sessionID uuid.UUID, identityKey string) (*model.MembershipEntry, error) {
	var out *model.MembershipEntry
	err := r.access.with(func(d *memoryData) error {
		for _, entry := range d.memberships {
			if entry.SessionID == sessionID && entry.IdentityKey == identityKey {
				e := entry
				out = &e
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (r *memMembershipRepository) GetByID(_ context.Context, sessionID, entryID uuid.UUID) (*model.MembershipEntry, error) {
	var out *model.MembershipEntry
	err := r.access.with(func(d *memoryData) error {
		entry, ok := d.memberships[entryID]
		if !ok || entry.SessionID != sessionID {
			return ErrNotFound
		}
		out = &entry
		return nil
	})
	return out, err
}

func (r *memMembershipRepository) Insert(_ context.Context, entry *model.MembershipEntry) error {
	return r.access.with(func(d *memoryData) error {
		for _, existing := range d.memberships {
			if existing.SessionID == entry.SessionID && existing.IdentityKey == entry.IdentityKey {
				return ErrDuplicateEntry
			}
		}
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		now := time.Now()
		entry.CreatedAt, entry.UpdatedAt = now, now
		d.memberships[entry.ID] = *entry
		return nil
	})
}

func (r *memMembershipRepository) SetStatus(_ context.Context, entryID uuid.UUID, from, to model.MembershipStatus) (bool, error) {
	changed := false
	err := r.access.with(func(d *memoryData) error {
		entry, ok := d.memberships[entryID]
		if !ok || entry.Status != from {
			return nil
		}
		entry.Status = to
		entry.UpdatedAt = time.Now()
		d.memberships[entryID] = entry
		changed = true
		return nil
	})
	return changed, err
}

func (r *memMembershipRepository) Remove(_ context.Context, sessionID uuid.UUID, identityKey string) error {
	return r.access.with(func(d *memoryData) error {
		for id, entry := range d.memberships {
			if entry.SessionID == sessionID && entry.IdentityKey == identityKey {
				delete(d.memberships, id)
				return nil
			}
		}
		return nil
	})
}

func (r *memMembershipRepository) RemoveBySession(_ context.Context, sessionID uuid.UUID) error {
	return r.access.with(func(d *memoryData) error {
		for id, entry := range d.memberships {
			if entry.SessionID == sessionID {
				delete(d.memberships, id)
			}
		}
		return nil
	})
}

func (r *memMembershipRepository) List(_ context.Context, sessionID uuid.UUID, status model.MembershipStatus) ([]model.MembershipEntry, error) {
	var out []model.MembershipEntry
	err := r.access.with(func(d *memoryData) error {
		for _, entry := range d.memberships {
			if entry.SessionID != sessionID {
				continue
			}
			if status != "" && entry.Status != status {
				continue
			}
			out = append(out, entry)
		}
		return nil
	})
	return out, err
}

func (r *memMembershipRepository) ListConfirmed(ctx context.Context, sessionID uuid.UUID) ([]model.MembershipEntry, error) {
	return r.List(ctx, sessionID, model.MembershipStatusConfirmed)
}

func (r *memMembershipRepository) CountConfirmed(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	entries, err := r.ListConfirmed(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

type memInviteTokenRepository struct {
	access memAccess
}

func (r *memInviteTokenRepository) Create(_ context.Context, token *model.InviteToken) error {
	return r.access.with(func(d *memoryData) error {
		if token.ID == uuid.Nil {
			token.ID = uuid.New()
		}
		token.CreatedAt = time.Now()
		d.invites[token.Token] = *token
		return nil
	})
}

func (r *memInviteTokenRepository) GetByToken(_ context.Context, token string) (*model.InviteToken, error) {
	var out *model.InviteToken
	err := r.access.with(func(d *memoryData) error {
		invite, ok := d.invites[token]
		if !ok {
			return ErrNotFound
		}
		out = &invite
		return nil
	})
	return out, err
}

func (r *memInviteTokenRepository) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.InviteToken, error) {
	var out []model.InviteToken
	err := r.access.with(func(d *memoryData) error {
		for _, invite := range d.invites {
			if invite.SessionID == sessionID {
				out = append(out, invite)
			}
		}
		return nil
	})
	return out, err
}

type memAttendanceRepository struct {
	access memAccess
}

func (r *memAttendanceRepository) Upsert(_ context.Context, record *model.AttendanceRecord) error {
	return r.access.with(func(d *memoryData) error {
		key := attendanceKey(record.SessionID, record.UserID)
		now := time.Now()
		if existing, ok := d.attendance[key]; ok {
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
		} else {
			record.ID = uuid.New()
			record.CreatedAt = now
		}
		record.UpdatedAt = now
		d.attendance[key] = *record
		return nil
	})
}

func (r *memAttendanceRepository) Get(_ context.Context, sessionID, userID uuid.UUID) (*model.AttendanceRecord, error) {
	var out *model.AttendanceRecord
	err := r.access.with(func(d *memoryData) error {
		record, ok := d.attendance[attendanceKey(sessionID, userID)]
		if !ok {
			return ErrNotFound
		}
		out = &record
		return nil
	})
	return out, err
}

func (r *memAttendanceRepository) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	err := r.access.with(func(d *memoryData) error {
		for _, record := range d.attendance {
			if record.SessionID == sessionID {
				out = append(out, record)
			}
		}
		return nil
	})
	return out, err
}

type memReviewRepository struct {
	access memAccess
}

func (r *memReviewRepository) Create(_ context.Context, review *model.Review) error {
	return r.access.with(func(d *memoryData) error {
		key := review.SessionID.String() + "|" + review.ReviewerID.String()
		if _, ok := d.reviews[key]; ok {
			return ErrDuplicateEntry
		}
		if review.ID == uuid.Nil {
			review.ID = uuid.New()
		}
		review.CreatedAt = time.Now()
		d.reviews[key] = *review
		return nil
	})
}

func (r *memReviewRepository) Get(_ context.Context, sessionID, reviewerID uuid.UUID) (*model.Review, error) {
	var out *model.Review
	err := r.access.with(func(d *memoryData) error {
		review, ok := d.reviews[sessionID.String()+"|"+reviewerID.String()]
		if !ok {
			return ErrNotFound
		}
		out = &review
		return nil
	})
	return out, err
}

func (r *memReviewRepository) ListByHost(_ context.Context, hostID uuid.UUID) ([]model.Review, error) {
	var out []model.Review
	err := r.access.with(func(d *memoryData) error {
		for _, review := range d.reviews {
			if review.HostID == hostID {
				out = append(out, review)
			}
		}
		return nil
	})
	return out, err
}
