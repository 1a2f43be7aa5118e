package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/repository"
)

// MembershipService coordinates the ledger, the join policy, and capacity
// admission. Every join path (registered, guest, invite link) goes through
// Join; no other code writes membership entries or the occupancy counter.
type MembershipService interface {
	Join(ctx context.Context, sessionID uuid.UUID, identity model.Identity, inviteToken string) (*model.MembershipEntry, error)
	Leave(ctx context.Context, sessionID uuid.UUID, identity model.Identity) error
	Approve(ctx context.Context, sessionID, entryID, actingUserID uuid.UUID) (*model.MembershipEntry, error)
	Reject(ctx context.Context, sessionID, entryID, actingUserID uuid.UUID) error
	Kick(ctx context.Context, sessionID, entryID, actingUserID uuid.UUID) error
	ListMembers(ctx context.Context, sessionID, actingUserID uuid.UUID) ([]model.MembershipEntry, error)
}

type membershipService struct {
	store    repository.Store
	notifier Notifier
	logger   *zap.Logger
}

func NewMembershipService(store repository.Store, notifier Notifier, logger *zap.Logger) MembershipService {
	return &membershipService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *membershipService) Join(ctx context.Context, sessionID uuid.UUID, identity model.Identity, inviteToken string) (*model.MembershipEntry, error) {
	if !identity.Valid() {
		return nil, fmt.Errorf("%w: guest joins need a name and a phone or email", ErrValidation)
	}

	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	hasValidInvite := false
	if inviteToken != "" {
		invite, err := s.store.Invites().GetByToken(ctx, inviteToken)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTokenNotFound
			}
			return nil, err
		}
		if invite.Expired(time.Now()) {
			return nil, ErrTokenExpired
		}
		// A token for another session grants nothing; the declared policy
		// still applies.
		hasValidInvite = invite.SessionID == session.ID
	}

	status, err := decideJoin(session, identity, hasValidInvite)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Memberships().Find(ctx, sessionID, identity.Key()); err == nil {
		return nil, ErrDuplicateMembership
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	entry := model.NewMembershipEntry(sessionID, identity, status, time.Now())

	if status == model.MembershipStatusPending {
		// Pending requests reserve no capacity slot; the counter moves only
		// when the host approves.
		if err := s.store.Memberships().Insert(ctx, entry); err != nil {
			return nil, mapStoreError(err)
		}
		s.notifyEntry(ctx, EventMemberPending, session, entry)
		return entry, nil
	}

	// Ledger row and counter are one unit of work: if admission loses the
	// capacity race the insert rolls back with it.
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Memberships().Insert(ctx, entry); err != nil {
			return err
		}
		return tx.Sessions().AdmitConfirmed(ctx, sessionID)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.notifyEntry(ctx, EventMemberJoined, session, entry)
	return entry, nil
}

func (s *membershipService) Leave(ctx context.Context, sessionID uuid.UUID, identity model.Identity) error {
	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return mapStoreError(err)
	}

	entry, err := s.store.Memberships().Find(ctx, sessionID, identity.Key())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil // leaving without an entry is a no-op
		}
		return err
	}

	if err := s.removeEntry(ctx, entry); err != nil {
		return mapStoreError(err)
	}

	s.notifyEntry(ctx, EventMemberLeft, session, entry)
	return nil
}

func (s *membershipService) Approve(ctx context.Context, sessionID, entryID, actingUserID uuid.UUID) (*model.MembershipEntry, error) {
	session, err := s.requireCreator(ctx, sessionID, actingUserID)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.Memberships().GetByID(ctx, sessionID, entryID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	// Pending entries never reserved a slot, so approval must win the
	// capacity check now, in the same transaction as the status flip.
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		changed, err := tx.Memberships().SetStatus(ctx, entryID,
			model.MembershipStatusPending, model.MembershipStatusConfirmed)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: entry is not pending", ErrValidation)
		}
		return tx.Sessions().AdmitConfirmed(ctx, sessionID)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	entry.Status = model.MembershipStatusConfirmed
	s.notifyEntry(ctx, EventMemberApproved, session, entry)
	return entry, nil
}

func (s *membershipService) Reject(ctx context.Context, sessionID, entryID, actingUserID uuid.UUID) error {
	session, err := s.requireCreator(ctx, sessionID, actingUserID)
	if err != nil {
		return err
	}

	entry, err := s.store.Memberships().GetByID(ctx, sessionID, entryID)
	if err != nil {
		return mapStoreError(err)
	}
	if entry.Status != model.MembershipStatusPending {
		return fmt.Errorf("%w: entry is not pending", ErrValidation)
	}

	if err := s.store.Memberships().Remove(ctx, sessionID, entry.IdentityKey); err != nil {
		return err
	}

	s.notifyEntry(ctx, EventMemberRemoved, session, entry)
	return nil
}

func (s *membershipService) Kick(ctx context.Context, sessionID, entryID, actingUserID uuid.UUID) error {
	session, err := s.requireCreator(ctx, sessionID, actingUserID)
	if err != nil {
		return err
	}
	entry, err := s.store.Memberships().GetByID(ctx, sessionID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil // already gone
		}
		return err
	}
	if entry.UserID != nil && *entry.UserID == session.CreatorID {
		return fmt.Errorf("%w: cannot remove the host", ErrValidation)
	}
	if err := s.removeEntry(ctx, entry); err != nil {
		return mapStoreError(err)
	}
	s.notifyEntry(ctx, EventMemberRemoved, session, entry)
	return nil
}

func (s *membershipService) ListMembers(ctx context.Context, sessionID, actingUserID uuid.UUID) ([]model.MembershipEntry, error) {
	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	// The host sees pending requests; everyone else only the confirmed set.
	if actingUserID == session.CreatorID {
		return s.store.Memberships().List(ctx, sessionID, "")
	}
	return s.store.Memberships().ListConfirmed(ctx, sessionID)
}

// removeEntry deletes the ledger row; confirmed entries release their
// capacity slot in the same unit of work.
func (s *membershipService) removeEntry(ctx context.Context, entry *model.MembershipEntry) error {
	if !entry.IsConfirmed() {
		return s.store.Memberships().Remove(ctx, entry.SessionID, entry.IdentityKey)
	}
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Memberships().Remove(ctx, entry.SessionID, entry.IdentityKey); err != nil {
			return err
		}
		return tx.Sessions().Release(ctx, entry.SessionID)
	})
}

func (s *membershipService) requireCreator(ctx context.Context, sessionID, actingUserID uuid.UUID) (*model.Session, error) {
	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if session.CreatorID != actingUserID {
		return nil, fmt.Errorf("%w: only the host may manage members", ErrNotAuthorized)
	}
	return session, nil
}

func (s *membershipService) notifyEntry(ctx context.Context, eventType EventType, session *model.Session, entry *model.MembershipEntry) {
	event := Event{
		Type:         eventType,
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

// mapStoreError lifts repository sentinels into the service taxonomy.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateEntry):
		return ErrDuplicateMembership
	case errors.Is(err, repository.ErrCapacityFull):
		return ErrCapacityFull
	case errors.Is(err, repository.ErrSessionInactive):
		return ErrSessionInactive
	}
	return err
}

var _ MembershipService = (*membershipService)(nil)
