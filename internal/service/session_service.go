package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/repository"
)

type CreateSessionInput struct {
	CreatorID        uuid.UUID
	ActivityType     string
	Title            string
	Description      string
	ScheduledAt      time.Time
	DurationMinutes  int
	LocationName     string
	Latitude         *float64
	Longitude        *float64
	MaxParticipants  int
	JoinPolicy       model.JoinPolicy
	SkillLevel       string
	GenderPreference string
}

// SessionPatch carries the creator-editable fields; nil means "unchanged".
// The creator identity and the occupancy counter are deliberately not
// patchable.
type SessionPatch struct {
	ActivityType     *string
	Title            *string
	Description      *string
	ScheduledAt      *time.Time
	DurationMinutes  *int
	LocationName     *string
	Latitude         *float64
	Longitude        *float64
	MaxParticipants  *int
	JoinPolicy       *model.JoinPolicy
	SkillLevel       *string
	GenderPreference *string
}

// SessionService is the registry of canonical session records.
type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*model.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
	List(ctx context.Context, filter repository.SessionFilter) ([]model.Session, error)
	Update(ctx context.Context, id uuid.UUID, patch SessionPatch, actingUserID uuid.UUID) (*model.Session, error)
	Cancel(ctx context.Context, id, actingUserID uuid.UUID) error

	// AdminRemove is the administrative removal path; it does not require
	// the acting identity to be the creator.
	AdminRemove(ctx context.Context, id uuid.UUID) error
}

type sessionService struct {
	store    repository.Store
	notifier Notifier
	logger   *zap.Logger
}

func NewSessionService(store repository.Store, notifier Notifier, logger *zap.Logger) SessionService {
	return &sessionService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *sessionService) Create(ctx context.Context, input CreateSessionInput) (*model.Session, error) {
	if input.MaxParticipants < 2 {
		return nil, fmt.Errorf("%w: max_participants must be at least 2", ErrValidation)
	}
	if input.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if input.Title == "" || input.ActivityType == "" {
		return nil, fmt.Errorf("%w: title and activity_type are required", ErrValidation)
	}
	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if input.ScheduledAt.Before(startOfToday) {
		return nil, fmt.Errorf("%w: scheduled date is in the past", ErrValidation)
	}
	switch input.JoinPolicy {
	case "", model.JoinPolicyOpen, model.JoinPolicyCurated, model.JoinPolicyInviteOnly:
	default:
		return nil, fmt.Errorf("%w: unknown join policy %q", ErrValidation, input.JoinPolicy)
	}

	if _, err := s.store.Users().GetByID(ctx, input.CreatorID); err != nil {
		return nil, mapStoreError(err)
	}

	policy := input.JoinPolicy
	if policy == "" {
		policy = model.JoinPolicyOpen
	}

	session := &model.Session{
		CreatorID:        input.CreatorID,
		ActivityType:     input.ActivityType,
		Title:            input.Title,
		Description:      input.Description,
		ScheduledAt:      input.ScheduledAt,
		DurationMinutes:  input.DurationMinutes,
		LocationName:     input.LocationName,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		MaxParticipants:  input.MaxParticipants,
		JoinPolicy:       policy,
		Status:           model.SessionStatusActive,
		SkillLevel:       input.SkillLevel,
		GenderPreference: input.GenderPreference,
		// The creator holds the first slot from the moment the session
		// exists; their confirmed entry is written below in the same
		// transaction.
		CurrentParticipants: 1,
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Sessions().Create(ctx, session); err != nil {
			return err
		}
		entry := model.NewMembershipEntry(
			session.ID,
			model.RegisteredIdentity(input.CreatorID),
			model.MembershipStatusConfirmed,
			now,
		)
		return tx.Memberships().Insert(ctx, entry)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	session, err := s.store.Sessions().GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, filter repository.SessionFilter) ([]model.Session, error) {
	return s.store.Sessions().List(ctx, filter)
}

func (s *sessionService) Update(ctx context.Context, id uuid.UUID, patch SessionPatch, actingUserID uuid.UUID) (*model.Session, error) {
	session, err := s.store.Sessions().GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if session.CreatorID != actingUserID {
		return nil, fmt.Errorf("%w: only the creator may edit a session", ErrNotAuthorized)
	}

	if patch.ActivityType != nil {
		session.ActivityType = *patch.ActivityType
	}
	if patch.Title != nil {
		session.Title = *patch.Title
	}
	if patch.Description != nil {
		session.Description = *patch.Description
	}
	if patch.ScheduledAt != nil {
		now := time.Now()
		startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if patch.ScheduledAt.Before(startOfToday) {
			return nil, fmt.Errorf("%w: scheduled date is in the past", ErrValidation)
		}
		session.ScheduledAt = *patch.ScheduledAt
	}
	if patch.DurationMinutes != nil {
		if *patch.DurationMinutes <= 0 {
			return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
		}
		session.DurationMinutes = *patch.DurationMinutes
	}
	if patch.LocationName != nil {
		session.LocationName = *patch.LocationName
	}
	if patch.Latitude != nil {
		session.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		session.Longitude = patch.Longitude
	}
	if patch.MaxParticipants != nil {
		if *patch.MaxParticipants < 2 {
			return nil, fmt.Errorf("%w: max_participants must be at least 2", ErrValidation)
		}
		if *patch.MaxParticipants < session.CurrentParticipants {
			return nil, fmt.Errorf("%w: capacity cannot drop below current participants", ErrValidation)
		}
		session.MaxParticipants = *patch.MaxParticipants
	}
	if patch.JoinPolicy != nil {
		switch *patch.JoinPolicy {
		case model.JoinPolicyOpen, model.JoinPolicyCurated, model.JoinPolicyInviteOnly:
			session.JoinPolicy = *patch.JoinPolicy
		default:
			return nil, fmt.Errorf("%w: unknown join policy %q", ErrValidation, *patch.JoinPolicy)
		}
	}
	if patch.SkillLevel != nil {
		session.SkillLevel = *patch.SkillLevel
	}
	if patch.GenderPreference != nil {
		session.GenderPreference = *patch.GenderPreference
	}

	if err := s.store.Sessions().Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) Cancel(ctx context.Context, id, actingUserID uuid.UUID) error {
	session, err := s.store.Sessions().GetByID(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	if session.CreatorID != actingUserID {
		return fmt.Errorf("%w: only the creator may cancel a session", ErrNotAuthorized)
	}
	if session.Status == model.SessionStatusCancelled {
		return nil // cancelling twice is a no-op
	}

	// Flip the status and cascade the ledger in one unit of work; any join
	// racing this transaction either commits before the flip or fails its
	// admission check against the cancelled row. The notification snapshot is
	// taken inside the same transaction, so every member the cascade removes
	// is on it.
	var members []model.MembershipEntry
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		changed, err := tx.Sessions().SetStatus(ctx, id, model.SessionStatusActive, model.SessionStatusCancelled)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: session is not active", ErrValidation)
		}
		if members, err = tx.Memberships().ListConfirmed(ctx, id); err != nil {
			return err
		}
		if err := tx.Memberships().RemoveBySession(ctx, id); err != nil {
			return err
		}
		return tx.Sessions().ResetParticipants(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, member := range members {
		if member.UserID != nil && *member.UserID == session.CreatorID {
			continue
		}
		s.notifyCancellation(ctx, session, member)
	}
	return nil
}

func (s *sessionService) AdminRemove(ctx context.Context, id uuid.UUID) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Memberships().RemoveBySession(ctx, id); err != nil {
			return err
		}
		return tx.Sessions().Delete(ctx, id)
	})
}

func (s *sessionService) notifyCancellation(ctx context.Context, session *model.Session, entry model.MembershipEntry) {
	event := Event{
		Type:         EventSessionCancelled,
		SessionID:    session.ID,
		SessionTitle: session.Title,
		Recipient:    entry.GuestEmail,
	}
	if entry.UserID != nil {
		if user, err := s.store.Users().GetByID(ctx, *entry.UserID); err == nil {
			event.Recipient = user.Email
		}
	}
	dispatchAsync(s.notifier, s.logger, event)
}

var _ SessionService = (*sessionService)(nil)
