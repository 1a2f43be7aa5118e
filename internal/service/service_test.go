package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/repository"
)

// Shared fixtures for the service tests, all running against the in-memory
// store.

func newTestUser(t *testing.T, store repository.Store, name string) *model.User {
	t.Helper()
	user := &model.User{
		DisplayName: name,
		Email:       name + "@example.com",
		Status:      model.UserStatusActive,
	}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

type sessionOpts struct {
	policy      model.JoinPolicy
	maxMembers  int
	scheduledAt time.Time
}

func newTestSession(t *testing.T, store repository.Store, creator *model.User, opts sessionOpts) *model.Session {
	t.Helper()
	if opts.policy == "" {
		opts.policy = model.JoinPolicyOpen
	}
	if opts.maxMembers == 0 {
		opts.maxMembers = 4
	}
	if opts.scheduledAt.IsZero() {
		opts.scheduledAt = time.Now().Add(24 * time.Hour)
	}

	svc := NewSessionService(store, NewLogNotifier(zap.NewNop()), zap.NewNop())
	session, err := svc.Create(context.Background(), CreateSessionInput{
		CreatorID:       creator.ID,
		ActivityType:    "badminton",
		Title:           "Evening doubles",
		ScheduledAt:     opts.scheduledAt,
		DurationMinutes: 90,
		MaxParticipants: opts.maxMembers,
		JoinPolicy:      opts.policy,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

// movePast rewrites the session schedule so its end is in the past.
func movePast(t *testing.T, store repository.Store, session *model.Session) {
	t.Helper()
	current, err := store.Sessions().GetByID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	current.ScheduledAt = time.Now().Add(-3 * time.Hour)
	current.DurationMinutes = 60
	if err := store.Sessions().Update(context.Background(), current); err != nil {
		t.Fatalf("update session: %v", err)
	}
	*session = *current
}

func newMembershipService(store repository.Store) MembershipService {
	return NewMembershipService(store, NewLogNotifier(zap.NewNop()), zap.NewNop())
}

func zapNop() *zap.Logger { return zap.NewNop() }

func sessionCounter(t *testing.T, store repository.Store, sessionID uuid.UUID) int {
	t.Helper()
	session, err := store.Sessions().GetByID(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return session.CurrentParticipants
}

// assertCounterInvariant checks that the stored counter equals the number of
// confirmed ledger entries.
func assertCounterInvariant(t *testing.T, store repository.Store, sessionID uuid.UUID) {
	t.Helper()
	confirmed, err := store.Memberships().CountConfirmed(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("count confirmed: %v", err)
	}
	counter := sessionCounter(t, store, sessionID)
	if int64(counter) != confirmed {
		t.Fatalf("counter invariant violated: counter=%d confirmed=%d", counter, confirmed)
	}
}
