package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/repository"
)

type fixedRecapCounter int

func (c fixedRecapCounter) Count(context.Context, uuid.UUID, uuid.UUID) (int, error) {
	return int(c), nil
}

func TestMarkAttendanceAuthorization(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := NewAttendanceService(store, nil)
	ctx := context.Background()

	if _, err := newMembershipService(store).Join(ctx, session.ID,
		model.RegisteredIdentity(member.ID), ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	marks := []AttendanceMark{{UserID: member.ID, Attended: true}}

	if err := svc.Mark(ctx, session.ID, marks, member.ID, false); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("non-host mark must fail, got %v", err)
	}
	if err := svc.Mark(ctx, session.ID, marks, creator.ID, false); !errors.Is(err, ErrValidation) {
		t.Fatalf("host mark before end must fail, got %v", err)
	}
	// admins are exempt from the timing rule
	if err := svc.Mark(ctx, session.ID, marks, creator.ID, true); err != nil {
		t.Fatalf("admin mark: %v", err)
	}

	movePast(t, store, session)
	if err := svc.Mark(ctx, session.ID, marks, creator.ID, false); err != nil {
		t.Fatalf("host mark after end: %v", err)
	}
	record, err := store.Attendance().Get(ctx, session.ID, member.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if !record.Attended || record.MarkedBy != creator.ID {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestMarkAttendanceRequiresConfirmedParticipant(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	outsider := newTestUser(t, store, "outsider")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := NewAttendanceService(store, nil)
	ctx := context.Background()

	if _, err := newMembershipService(store).Join(ctx, session.ID,
		model.RegisteredIdentity(member.ID), ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	movePast(t, store, session)

	marks := []AttendanceMark{
		{UserID: member.ID, Attended: true},
		{UserID: outsider.ID, Attended: true},
	}
	if err := svc.Mark(ctx, session.ID, marks, creator.ID, false); !errors.Is(err, ErrValidation) {
		t.Fatalf("marking a non-participant must fail, got %v", err)
	}
	// the batch is transactional: the valid mark must not have stuck
	if _, err := store.Attendance().Get(ctx, session.ID, member.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("partial batch leaked a record, err=%v", err)
	}
}

func TestMarkIsUpsert(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := NewAttendanceService(store, nil)
	ctx := context.Background()

	if _, err := newMembershipService(store).Join(ctx, session.ID,
		model.RegisteredIdentity(member.ID), ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	movePast(t, store, session)

	if err := svc.Mark(ctx, session.ID, []AttendanceMark{{UserID: member.ID, Attended: true}}, creator.ID, false); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if err := svc.Mark(ctx, session.ID, []AttendanceMark{{UserID: member.ID, Attended: false}}, creator.ID, false); err != nil {
		t.Fatalf("correcting mark: %v", err)
	}
	record, err := store.Attendance().Get(ctx, session.ID, member.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Attended {
		t.Fatalf("correction not applied")
	}
}

func TestCanUploadRecap(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	attendee := newTestUser(t, store, "attendee")
	noShow := newTestUser(t, store, "noshow")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := NewAttendanceService(store, nil)
	ctx := context.Background()

	ms := newMembershipService(store)
	for _, u := range []*model.User{attendee, noShow} {
		if _, err := ms.Join(ctx, session.ID, model.RegisteredIdentity(u.ID), ""); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	// nothing is uploadable before the session ends, host included
	if ok, _ := svc.CanUploadRecap(ctx, session.ID, creator.ID); ok {
		t.Fatalf("recap allowed before session end")
	}

	movePast(t, store, session)
	marks := []AttendanceMark{
		{UserID: attendee.ID, Attended: true},
		{UserID: noShow.ID, Attended: false},
	}
	if err := svc.Mark(ctx, session.ID, marks, creator.ID, false); err != nil {
		t.Fatalf("mark: %v", err)
	}

	cases := []struct {
		name string
		user uuid.UUID
		want bool
	}{
		{"host without own record", creator.ID, true},
		{"marked attendee", attendee.ID, true},
		{"marked no-show", noShow.ID, false},
		{"unmarked stranger", uuid.New(), false},
	}
	for _, tc := range cases {
		ok, err := svc.CanUploadRecap(ctx, session.ID, tc.user)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if ok != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, ok, tc.want)
		}
	}
}

func TestCanUploadRecapRespectsUploadCap(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	session := newTestSession(t, store, creator, sessionOpts{})
	movePast(t, store, session)
	ctx := context.Background()

	atCap := NewAttendanceService(store, fixedRecapCounter(maxRecapUploads))
	if ok, err := atCap.CanUploadRecap(ctx, session.ID, creator.ID); err != nil || ok {
		t.Fatalf("expected cap reached, got ok=%v err=%v", ok, err)
	}
	belowCap := NewAttendanceService(store, fixedRecapCounter(maxRecapUploads-1))
	if ok, err := belowCap.CanUploadRecap(ctx, session.ID, creator.ID); err != nil || !ok {
		t.Fatalf("expected one slot left, got ok=%v err=%v", ok, err)
	}
}

func TestCanRate(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	member := newTestUser(t, store, "member")
	stranger := newTestUser(t, store, "stranger")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := NewAttendanceService(store, nil)
	ctx := context.Background()

	if _, err := newMembershipService(store).Join(ctx, session.ID,
		model.RegisteredIdentity(member.ID), ""); err != nil {
		t.Fatalf("join: %v", err)
	}

	if ok, _ := svc.CanRate(ctx, session.ID, member.ID); ok {
		t.Fatalf("rating allowed before session end")
	}

	movePast(t, store, session)
	if ok, _ := svc.CanRate(ctx, session.ID, member.ID); !ok {
		t.Fatalf("confirmed member must be able to rate a past session")
	}
	if ok, _ := svc.CanRate(ctx, session.ID, creator.ID); ok {
		t.Fatalf("hosts must not rate their own session")
	}
	if ok, _ := svc.CanRate(ctx, session.ID, stranger.ID); ok {
		t.Fatalf("non-members must not rate")
	}

	reviews := NewReviewService(store, svc)
	if _, err := reviews.Create(ctx, session.ID, member.ID, 5, "great host"); err != nil {
		t.Fatalf("create review: %v", err)
	}
	if ok, _ := svc.CanRate(ctx, session.ID, member.ID); ok {
		t.Fatalf("rating must be one-shot per session")
	}
}

func TestEligibilityBundlesBothGates(t *testing.T) {
	store := repository.NewMemoryStore()
	creator := newTestUser(t, store, "creator")
	session := newTestSession(t, store, creator, sessionOpts{})
	svc := NewAttendanceService(store, nil)
	ctx := context.Background()

	movePast(t, store, session)
	elig, err := svc.Eligibility(ctx, session.ID, creator.ID)
	if err != nil {
		t.Fatalf("eligibility: %v", err)
	}
	if !elig.CanUploadRecap || elig.CanRate {
		t.Fatalf("host eligibility wrong: %+v", elig)
	}
}
