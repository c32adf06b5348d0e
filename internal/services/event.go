package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nomineetracker/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	nomineeRepo    domain.NomineeRepository
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, nomineeRepo domain.NomineeRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		nomineeRepo:    nomineeRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if errs := event.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// ListEvents returns every event with counts derived from one grouped query.
func (s *eventService) ListEvents(ctx context.Context) ([]*domain.EventSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	counts, err := s.nomineeRepo.CountStatusesByEvent(ctx)
	if err != nil {
		return nil, fmt.Errorf("count nominees: %w", err)
	}
	out := make([]*domain.EventSummary, 0, len(events))
	for _, e := range events {
		out = append(out, &domain.EventSummary{
			Event:       *e,
			EventCounts: domain.CountsFromStatuses(counts[e.ID]),
		})
	}
	return out, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	nominees, err := s.nomineeRepo.ListByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list nominees: %w", err)
	}
	if nominees == nil {
		nominees = []*domain.Nominee{}
	}
	return &domain.EventDetail{
		EventSummary: domain.EventSummary{Event: *event, EventCounts: domain.Aggregate(nominees)},
		Nominees:     nominees,
	}, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
