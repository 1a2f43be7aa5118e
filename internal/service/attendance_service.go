package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/repository"
)

// maxRecapUploads caps how many recap photos one participant may attach to a
// session.
const maxRecapUploads = 3

type AttendanceMark struct {
	UserID   uuid.UUID `json:"user_id"`
	Attended bool      `json:"attended"`
}

type Eligibility struct {
	CanUploadRecap bool `json:"can_upload_recap"`
	CanRate        bool `json:"can_rate"`
}

// RecapCounter reports how many recap photos a participant has already
// uploaded for a session. Photo storage itself is an external collaborator;
// only the count feeds the eligibility rule.
type RecapCounter interface {
	Count(ctx context.Context, sessionID, userID uuid.UUID) (int, error)
}

// NoRecapsCounter is the default RecapCounter when no photo storage is wired.
type NoRecapsCounter struct{}

func (NoRecapsCounter) Count(context.Context, uuid.UUID, uuid.UUID) (int, error) { return 0, nil }

// AttendanceService records who actually showed up and derives the
// post-event permissions that depend on it.
type AttendanceService interface {
	// Mark records attendance facts. Only the session creator (after the
	// scheduled end) or an admin (any time) may mark.
	Mark(ctx context.Context, sessionID uuid.UUID, marks []AttendanceMark, actingUserID uuid.UUID, isAdmin bool) error

	CanUploadRecap(ctx context.Context, sessionID, userID uuid.UUID) (bool, error)
	CanRate(ctx context.Context, sessionID, userID uuid.UUID) (bool, error)
	Eligibility(ctx context.Context, sessionID, userID uuid.UUID) (*Eligibility, error)
}

type attendanceService struct {
	store  repository.Store
	recaps RecapCounter
}

func NewAttendanceService(store repository.Store, recaps RecapCounter) AttendanceService {
	if recaps == nil {
		recaps = NoRecapsCounter{}
	}
	return &attendanceService{store: store, recaps: recaps}
}

func (s *attendanceService) Mark(ctx context.Context, sessionID uuid.UUID, marks []AttendanceMark, actingUserID uuid.UUID, isAdmin bool) error {
	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return mapStoreError(err)
	}

	if !isAdmin {
		if session.CreatorID != actingUserID {
			return fmt.Errorf("%w: only the host may mark attendance", ErrNotAuthorized)
		}
		if !session.IsPast(time.Now()) {
			return fmt.Errorf("%w: attendance is marked after the session ends", ErrValidation)
		}
	}

	return s.store.InTx(ctx, func(tx repository.Store) error {
		for _, mark := range marks {
			entry, err := tx.Memberships().Find(ctx, sessionID, model.RegisteredIdentity(mark.UserID).Key())
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%w: user %s is not a participant", ErrValidation, mark.UserID)
				}
				return err
			}
			if !entry.IsConfirmed() {
				return fmt.Errorf("%w: user %s is not a confirmed participant", ErrValidation, mark.UserID)
			}
			record := &model.AttendanceRecord{
				SessionID: sessionID,
				UserID:    mark.UserID,
				Attended:  mark.Attended,
				MarkedBy:  actingUserID,
			}
			if err := tx.Attendance().Upsert(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *attendanceService) CanUploadRecap(ctx context.Context, sessionID, userID uuid.UUID) (bool, error) {
	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return false, mapStoreError(err)
	}
	if !session.IsPast(time.Now()) {
		return false, nil
	}

	// The creator may always post a recap of their own session; everyone
	// else needs a recorded attended=true fact.
	if userID != session.CreatorID {
		record, err := s.store.Attendance().Get(ctx, sessionID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		if !record.Attended {
			return false, nil
		}
	}

	uploaded, err := s.recaps.Count(ctx, sessionID, userID)
	if err != nil {
		return false, err
	}
	return uploaded < maxRecapUploads, nil
}

func (s *attendanceService) CanRate(ctx context.Context, sessionID, userID uuid.UUID) (bool, error) {
	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return false, mapStoreError(err)
	}
	if userID == session.CreatorID {
		return false, nil
	}
	if !session.IsPast(time.Now()) {
		return false, nil
	}

	entry, err := s.store.Memberships().Find(ctx, sessionID, model.RegisteredIdentity(userID).Key())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !entry.IsConfirmed() {
		return false, nil
	}

	if _, err := s.store.Reviews().Get(ctx, sessionID, userID); err == nil {
		return false, nil // already reviewed
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	return true, nil
}

func (s *attendanceService) Eligibility(ctx context.Context, sessionID, userID uuid.UUID) (*Eligibility, error) {
	canRecap, err := s.CanUploadRecap(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	canRate, err := s.CanRate(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return &Eligibility{CanUploadRecap: canRecap, CanRate: canRate}, nil
}

var _ AttendanceService = (*attendanceService)(nil)
