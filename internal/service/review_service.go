package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/repository"
)

// ReviewService stores post-event host ratings. Eligibility is owned by the
// attendance gate; this service only enforces it at write time.
type ReviewService interface {
	Create(ctx context.Context, sessionID, reviewerID uuid.UUID, rating int, comment string) (*model.Review, error)
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]model.Review, error)
}

type reviewService struct {
	store      repository.Store
	attendance AttendanceService
}

func NewReviewService(store repository.Store, attendance AttendanceService) ReviewService {
	return &reviewService{store: store, attendance: attendance}
}

func (s *reviewService) Create(ctx context.Context, sessionID, reviewerID uuid.UUID, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	ok, err := s.attendance.CanRate(ctx, sessionID, reviewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: not eligible to rate this session", ErrNotAuthorized)
	}

	review := &model.Review{
		SessionID:  sessionID,
		ReviewerID: reviewerID,
		HostID:     session.CreatorID,
		Rating:     rating,
		Comment:    comment,
	}
	if err := s.store.Reviews().Create(ctx, review); err != nil {
		return nil, mapStoreError(err)
	}
	return review, nil
}

func (s *reviewService) ListByHost(ctx context.Context, hostID uuid.UUID) ([]model.Review, error) {
	return s.store.Reviews().ListByHost(ctx, hostID)
}

var _ ReviewService = (*reviewService)(nil)
