package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nomineetracker/internal/domain"
)

type feedbackService struct {
	eventRepo      domain.EventRepository
	nomineeRepo    domain.NomineeRepository
	feedbackRepo   domain.FeedbackRepository
	links          domain.LinkIssuer
	contextTimeout time.Duration
}

func NewFeedbackService(eventRepo domain.EventRepository, nomineeRepo domain.NomineeRepository, feedbackRepo domain.FeedbackRepository, links domain.LinkIssuer, timeout time.Duration) domain.FeedbackService {
	return &feedbackService{
		eventRepo:      eventRepo,
		nomineeRepo:    nomineeRepo,
		feedbackRepo:   feedbackRepo,
		links:          links,
		contextTimeout: timeout,
	}
}

// Submit stores the nominee's one and only feedback. Checks run in order:
// unknown nominee, not attended, already submitted, rating out of range.
func (s *feedbackService) Submit(ctx context.Context, nomineeID string, in domain.FeedbackSubmission) (*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.submit(ctx, nomineeID, in)
}

func (s *feedbackService) SubmitByToken(ctx context.Context, token string, in domain.FeedbackSubmission) (*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	nomineeID, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, nomineeID, in)
}

func (s *feedbackService) submit(ctx context.Context, nomineeID string, in domain.FeedbackSubmission) (*domain.Feedback, error) {
	n, err := s.nomineeRepo.GetByID(ctx, nomineeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get nominee: %w", err)
	}
	if n.Status != domain.StatusAttended {
		return nil, domain.ErrNotEligible
	}
	has, err := s.hasFeedback(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, domain.ErrAlreadySubmitted
	}
	if err := domain.ValidateRating(in.Rating); err != nil {
		return nil, err
	}

	f := domain.NewFeedback(n.ID, in.Rating, in.Comments, in.Suggestions, time.Now().UTC())
	if err := s.feedbackRepo.Create(ctx, f); err != nil {
		if errors.Is(err, domain.ErrAlreadySubmitted) {
			return nil, domain.ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return f, nil
}

// GetInfo returns what the feedback form needs. Nominees who have not attended
// get ErrNotEligible so the form is never offered to them.
func (s *feedbackService) GetInfo(ctx context.Context, nomineeID string) (*domain.FeedbackInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.info(ctx, nomineeID)
}

func (s *feedbackService) GetInfoByToken(ctx context.Context, token string) (*domain.FeedbackInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	nomineeID, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.info(ctx, nomineeID)
}

func (s *feedbackService) info(ctx context.Context, nomineeID string) (*domain.FeedbackInfo, error) {
	n, err := s.nomineeRepo.GetByID(ctx, nomineeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get nominee: %w", err)
	}
	if n.Status != domain.StatusAttended {
		return nil, domain.ErrNotEligible
	}
	event, err := s.eventRepo.GetByID(ctx, n.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	has, err := s.hasFeedback(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	return &domain.FeedbackInfo{EventTitle: event.Title, NomineeName: n.Name, HasFeedback: has}, nil
}

func (s *feedbackService) ListByEvent(ctx context.Context, eventID string) ([]*domain.FeedbackEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	entries, err := s.feedbackRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	if entries == nil {
		entries = []*domain.FeedbackEntry{}
	}
	return entries, nil
}

func (s *feedbackService) resolve(ctx context.Context, token string) (string, error) {
	nomineeID, err := s.links.Resolve(ctx, token, domain.PurposeFeedback)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return nomineeID, nil
}

func (s *feedbackService) hasFeedback(ctx context.Context, nomineeID string) (bool, error) {
	_, err := s.feedbackRepo.GetByNomineeID(ctx, nomineeID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("get feedback: %w", err)
	}
}
