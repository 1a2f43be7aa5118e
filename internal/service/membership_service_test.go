package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/repository"
)

func TestJoinOpenSessionConfirmsAndIncrements(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := newMembershipService(store)

	entry, err := svc.Join(context.Background(), session.ID, model.RegisteredIdentity(member.ID), "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if entry.Status != model.MembershipStatusConfirmed {
		t.Fatalf("expected confirmed entry, got %q", entry.Status)
	}
	// creator auto-enrollment holds slot 1
	if got := sessionCounter(t, store, session.ID); got != 2 {
		t.Fatalf("expected counter 2, got %d", got)
	}
	assertCounterInvariant(t, store, session.ID)
}

func TestCreatorCannotJoinOwnSession(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := newMembershipService(store)

	_, err := svc.Join(context.Background(), session.ID, model.RegisteredIdentity(creator.ID), "")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestJoinFullSessionReturnsCapacityError(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	first := newTestUser(t, store, "first")
	second := newTestUser(t, store, "second")
	session := newTestSession(t, store, creator, sessionOpts{maxMembers: 2})
	svc := newMembershipService(store)

	if _, err := svc.Join(context.Background(), session.ID, model.RegisteredIdentity(first.ID), ""); err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, err := svc.Join(context.Background(), session.ID, model.RegisteredIdentity(second.ID), "")
	if !errors.Is(err, ErrCapacityFull) {
		t.Fatalf("expected ErrCapacityFull, got %v", err)
	}
	if got := sessionCounter(t, store, session.ID); got != 2 {
		t.Fatalf("counter must stay at capacity, got %d", got)
	}
	// the losing join must leave no orphan ledger row
	assertCounterInvariant(t, store, session.ID)
}

func TestConcurrentJoinsForLastSlot(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	a := newTestUser(t, store, "a")
	b := newTestUser(t, store, "b")
	session := newTestSession(t, store, creator, sessionOpts{maxMembers: 2})
	svc := newMembershipService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []*model.User{a, b} {
		i, user := i, user
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Join(context.Background(), session.ID, model.RegisteredIdentity(user.ID), "")
		}()
	}
	wg.Wait()

	var wins, capacityLosses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrCapacityFull):
			capacityLosses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || capacityLosses != 1 {
		t.Fatalf("expected exactly one winner and one capacity loss, got wins=%d losses=%d", wins, capacityLosses)
	}
	if got := sessionCounter(t, store, session.ID); got != session.MaxParticipants {
		t.Fatalf("counter must end at max_participants, got %d", got)
	}
	assertCounterInvariant(t, store, session.ID)
}

func TestGuestJoinDeduplicatesByPhone(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := newMembershipService(store)

	if _, err := svc.Join(context.Background(), session.ID,
		model.GuestIdentity("Sam", "+49 1555 1234", ""), ""); err != nil {
		t.Fatalf("first guest join: %v", err)
	}

	// same phone, different formatting and name
	_, err := svc.Join(context.Background(), session.ID,
		model.GuestIdentity("Samuel", "+4915551234", ""), "")
	if !errors.Is(err, ErrDuplicateMembership) {
		t.Fatalf("expected ErrDuplicateMembership, got %v", err)
	}
	if got := sessionCounter(t, store, session.ID); got != 2 {
		t.Fatalf("counter incremented more than once, got %d", got)
	}
}

func TestGuestJoinRequiresContact(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := newMembershipService(store)

	_, err := svc.Join(context.Background(), session.ID, model.GuestIdentity("Sam", "", ""), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	_, err = svc.Join(context.Background(), session.ID, model.GuestIdentity("", "+4915551234", ""), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing name, got %v", err)
	}
}

func TestCuratedJoinStaysPendingUntilApproval(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{policy: model.JoinPolicyCurated})
	svc := newMembershipService(store)

	entry, err := svc.Join(context.Background(), session.ID, model.RegisteredIdentity(member.ID), "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if entry.Status != model.MembershipStatusPending {
		t.Fatalf("expected pending entry, got %q", entry.Status)
	}
	// pending entries reserve no slot
	if got := sessionCounter(t, store, session.ID); got != 1 {
		t.Fatalf("expected counter 1, got %d", got)
	}

	approved, err := svc.Approve(context.Background(), session.ID, entry.ID, creator.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.MembershipStatusConfirmed {
		t.Fatalf("expected confirmed after approval, got %q", approved.Status)
	}
	if got := sessionCounter(t, store, session.ID); got != 2 {
		t.Fatalf("expected counter 2 after approval, got %d", got)
	}
	assertCounterInvariant(t, store, session.ID)
}

func TestApproveReRunsCapacityCheck(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	first := newTestUser(t, store, "first")
	second := newTestUser(t, store, "second")
	session := newTestSession(t, store, creator, sessionOpts{policy: model.JoinPolicyCurated, maxMembers: 2})
	svc := newMembershipService(store)

	ctx := context.Background()
	entryA, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(first.ID), "")
	if err != nil {
		t.Fatalf("join a: %v", err)
	}
	entryB, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(second.ID), "")
	if err != nil {
		t.Fatalf("join b: %v", err)
	}

	if _, err := svc.Approve(ctx, session.ID, entryA.ID, creator.ID); err != nil {
		t.Fatalf("approve a: %v", err)
	}
	// one slot was left; the second approval must lose
	_, err = svc.Approve(ctx, session.ID, entryB.ID, creator.ID)
	if !errors.Is(err, ErrCapacityFull) {
		t.Fatalf("expected ErrCapacityFull, got %v", err)
	}

	// the failed approval must leave the entry pending, not half-confirmed
	entry, err := store.Memberships().GetByID(ctx, session.ID, entryB.ID)
	if err != nil {
		t.Fatalf("reload entry: %v", err)
	}
	if entry.Status != model.MembershipStatusPending {
		t.Fatalf("expected entry still pending, got %q", entry.Status)
	}
	assertCounterInvariant(t, store, session.ID)
}

func TestApproveRequiresHost(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{policy: model.JoinPolicyCurated})
	svc := newMembershipService(store)

	entry, err := svc.Join(context.Background(), session.ID, model.RegisteredIdentity(member.ID), "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	_, err = svc.Approve(context.Background(), session.ID, entry.ID, member.ID)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestInviteTokenBypassesPolicyButNotCapacity(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	invited := newTestUser(t, store, "invited")
	late := newTestUser(t, store, "late")
	session := newTestSession(t, store, creator, sessionOpts{policy: model.JoinPolicyInviteOnly, maxMembers: 2})
	svc := newMembershipService(store)

	ctx := context.Background()
	invite := &model.InviteToken{
		SessionID: session.ID,
		Token:     "tok-valid",
		IssuerID:  creator.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Invites().Create(ctx, invite); err != nil {
		t.Fatalf("create invite: %v", err)
	}

	// no invite: rejected by policy
	if _, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(invited.ID), ""); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("expected ErrPolicyViolation, got %v", err)
	}

	// with invite: confirmed
	if _, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(invited.ID), "tok-valid"); err != nil {
		t.Fatalf("invite join: %v", err)
	}

	// session now full; a valid token does not bypass capacity
	_, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(late.ID), "tok-valid")
	if !errors.Is(err, ErrCapacityFull) {
		t.Fatalf("expected ErrCapacityFull, got %v", err)
	}
}

func TestExpiredInviteTokenRejectsJoin(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{policy: model.JoinPolicyInviteOnly})
	svc := newMembershipService(store)

	ctx := context.Background()
	invite := &model.InviteToken{
		SessionID: session.ID,
		Token:     "tok-expired",
		IssuerID:  creator.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := store.Invites().Create(ctx, invite); err != nil {
		t.Fatalf("create invite: %v", err)
	}

	_, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(member.ID), "tok-expired")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestInviteTokenForOtherSessionGrantsNothing(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	target := newTestSession(t, store, creator, sessionOpts{policy: model.JoinPolicyInviteOnly})
	other := newTestSession(t, store, creator, sessionOpts{})
	svc := newMembershipService(store)

	ctx := context.Background()
	invite := &model.InviteToken{
		SessionID: other.ID,
		Token:     "tok-other",
		IssuerID:  creator.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Invites().Create(ctx, invite); err != nil {
		t.Fatalf("create invite: %v", err)
	}

	_, err := svc.Join(ctx, target.ID, model.RegisteredIdentity(member.ID), "tok-other")
	if !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("expected ErrPolicyViolation, got %v", err)
	}
}

func TestLeaveWithoutEntryIsNoop(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	stranger := newTestUser(t, store, "stranger")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := newMembershipService(store)

	if err := svc.Leave(context.Background(), session.ID, model.RegisteredIdentity(stranger.ID)); err != nil {
		t.Fatalf("leave should be a no-op, got %v", err)
	}
	if got := sessionCounter(t, store, session.ID); got != 1 {
		t.Fatalf("counter must be unchanged, got %d", got)
	}
}

func TestLeaveConfirmedEntryDecrements(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := newMembershipService(store)

	ctx := context.Background()
	if _, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(member.ID), ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.Leave(ctx, session.ID, model.RegisteredIdentity(member.ID)); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := sessionCounter(t, store, session.ID); got != 1 {
		t.Fatalf("expected counter back to 1, got %d", got)
	}
	assertCounterInvariant(t, store, session.ID)

	// leaving again stays a no-op
	if err := svc.Leave(ctx, session.ID, model.RegisteredIdentity(member.ID)); err != nil {
		t.Fatalf("second leave: %v", err)
	}
	if got := sessionCounter(t, store, session.ID); got != 1 {
		t.Fatalf("counter must not go below confirmed count, got %d", got)
	}
}

func TestLeavePendingEntryDoesNotTouchCounter(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{policy: model.JoinPolicyCurated})
	svc := newMembershipService(store)

	ctx := context.Background()
	if _, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(member.ID), ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.Leave(ctx, session.ID, model.RegisteredIdentity(member.ID)); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := sessionCounter(t, store, session.ID); got != 1 {
		t.Fatalf("pending withdrawal must not move the counter, got %d", got)
	}
	if _, err := store.Memberships().Find(ctx, session.ID, model.RegisteredIdentity(member.ID).Key()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected entry removed, got %v", err)
	}
}

func TestKickConfirmedMemberReleasesSlot(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := newMembershipService(store)

	ctx := context.Background()
	entry, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(member.ID), "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := svc.Kick(ctx, session.ID, entry.ID, member.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("non-host kick must fail, got %v", err)
	}
	if err := svc.Kick(ctx, session.ID, entry.ID, creator.ID); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if got := sessionCounter(t, store, session.ID); got != 1 {
		t.Fatalf("expected counter 1 after kick, got %d", got)
	}
	assertCounterInvariant(t, store, session.ID)
}

func TestJoinCancelledSessionFails(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{})
	sessions := NewSessionService(store, NewLogNotifier(zapNop()), zapNop())
	svc := newMembershipService(store)

	ctx := context.Background()
	if err := sessions.Cancel(ctx, session.ID, creator.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := svc.Join(ctx, session.ID, model.RegisteredIdentity(member.ID), "")
	if !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("expected ErrSessionInactive, got %v", err)
	}
}

// brokenMembershipStore fails every membership lookup with the given error.
type brokenMembershipStore struct {
	repository.Store
	err error
}

func (s *brokenMembershipStore) Memberships() repository.MembershipRepository {
	return &brokenMembershipRepo{MembershipRepository: s.Store.Memberships(), err: s.err}
}

type brokenMembershipRepo struct {
	repository.MembershipRepository
	err error
}

func (r *brokenMembershipRepo) GetByID(context.Context, uuid.UUID, uuid.UUID) (*model.MembershipEntry, error) {
	return nil, r.err
}

func TestKickSurfacesStoreFailure(t *testing.T) {
	inner := repository.NewMemoryStore()
	creator := newTestUser(t, inner, "creator")
	member := newTestUser(t, inner, "member")
	session := newTestSession(t, inner, creator, sessionOpts{})
	ctx := context.Background()

	entry, err := newMembershipService(inner).Join(ctx, session.ID, model.RegisteredIdentity(member.ID), "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	broken := &brokenMembershipStore{Store: inner, err: context.DeadlineExceeded}
	svc := NewMembershipService(broken, NewLogNotifier(zapNop()), zapNop())
	if err := svc.Kick(ctx, session.ID, entry.ID, creator.ID); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the store failure to surface, got %v", err)
	}

	// nothing was removed and the counter is intact
	if _, err := inner.Memberships().Find(ctx, session.ID, model.RegisteredIdentity(member.ID).Key()); err != nil {
		t.Fatalf("member must remain after a failed kick: %v", err)
	}
	assertCounterInvariant(t, inner, session.ID)
}
