package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nomineetracker/internal/domain"
)

// maxTransitionAttempts bounds the reload-and-retry loop when a conditional
// status update loses a race. Statuses only move forward, so a nominee can be
// overtaken at most twice before a transition resolves.
const maxTransitionAttempts = 3

type nomineeService struct {
	eventRepo      domain.EventRepository
	nomineeRepo    domain.NomineeRepository
	links          domain.LinkIssuer
	notifier       domain.Notifier
	adminEmail     string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NomineeServiceConfig carries the collaborators of the nominee service.
type NomineeServiceConfig struct {
	EventRepo   domain.EventRepository
	NomineeRepo domain.NomineeRepository
	Links       domain.LinkIssuer
	Notifier    domain.Notifier
	// AdminEmail receives a notice for each accept/reject; empty disables it.
	AdminEmail string
	Logger     *slog.Logger
	Timeout    time.Duration
}

func NewNomineeService(cfg NomineeServiceConfig) domain.NomineeService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &nomineeService{
		eventRepo:      cfg.EventRepo,
		nomineeRepo:    cfg.NomineeRepo,
		links:          cfg.Links,
		notifier:       cfg.Notifier,
		adminEmail:     cfg.AdminEmail,
		logger:         logger,
		contextTimeout: cfg.Timeout,
	}
}

// AddNominees validates the whole batch first, creates every nominee as Pending
// and then hands one invitation per nominee to the notifier. Invitation problems
// are reported as warnings and never undo a creation. When an insert fails the
// batch stops there and the error comes back with the result for the nominees
// already created.
func (s *nomineeService) AddNominees(ctx context.Context, eventID string, descriptors []domain.NomineeDescriptor) (*domain.BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	normalized, err := domain.ValidateBatch(descriptors)
	if err != nil {
		return nil, err
	}

	result := &domain.BatchResult{
		Created:      make([]*domain.Nominee, 0, len(normalized)),
		MailWarnings: []domain.MailWarning{},
	}
	var createErr error
	for i, d := range normalized {
		n := domain.NewNominee(event.ID, d, time.Now().UTC())
		if err := s.nomineeRepo.Create(ctx, n); err != nil {
			createErr = fmt.Errorf("create nominee #%d: %w", i+1, err)
			break
		}
		result.Created = append(result.Created, n)
	}

	// Nominees stored before a failed insert are kept, so they are invited too.
	for _, n := range result.Created {
		if err := s.invite(ctx, event, n); err != nil {
			s.logger.WarnContext(ctx, "invitation not handed off", "nominee_id", n.ID, "err", err)
			result.MailWarnings = append(result.MailWarnings, domain.MailWarning{
				NomineeID: n.ID,
				Email:     n.Email,
				Message:   err.Error(),
			})
		}
	}
	if createErr != nil {
		return result, createErr
	}
	return result, nil
}

func (s *nomineeService) invite(ctx context.Context, event *domain.Event, n *domain.Nominee) error {
	links, err := s.links.IssueResponseLinks(ctx, n)
	if err != nil {
		return fmt.Errorf("issue response links: %w", err)
	}
	err = s.notifier.NotifyInvitation(ctx, &domain.InvitationEmailData{
		Email:            n.Email,
		NomineeName:      n.Name,
		EventTitle:       event.Title,
		EventDescription: event.Description,
		EventDate:        event.Date,
		EventTime:        event.Time,
		EventVenue:       event.Venue,
		AcceptURL:        links.AcceptURL,
		RejectURL:        links.RejectURL,
	})
	if err != nil {
		return fmt.Errorf("queue invitation: %w", err)
	}
	return nil
}

func (s *nomineeService) ListNominees(ctx context.Context, eventID string) ([]*domain.Nominee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	nominees, err := s.nomineeRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list nominees: %w", err)
	}
	if nominees == nil {
		nominees = []*domain.Nominee{}
	}
	return nominees, nil
}

func (s *nomineeService) MarkAttended(ctx context.Context, nomineeID string) (*domain.Nominee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.getNominee(ctx, nomineeID)
	if err != nil {
		return nil, err
	}
	n, _, err = s.apply(ctx, n, domain.EventAttend)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *nomineeService) DeleteNominee(ctx context.Context, nomineeID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.nomineeRepo.Delete(ctx, nomineeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete nominee: %w", err)
	}
	return nil
}

// Respond applies an accept or reject decision arriving through a response link.
// Any token that does not resolve yields ErrNotFound. A nominee who has already
// responded gets OutcomeAlready and the stored status is left alone.
func (s *nomineeService) Respond(ctx context.Context, token string, decision domain.StatusEvent) (*domain.ResponseResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if decision != domain.EventAccept && decision != domain.EventReject {
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrInvalidInput, decision)
	}
	nomineeID, err := s.links.Resolve(ctx, token, domain.PurposeResponse)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	n, err := s.getNominee(ctx, nomineeID)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, n.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	n, outcome, err := s.apply(ctx, n, decision)
	if err != nil {
		return nil, err
	}
	if outcome != domain.OutcomeAlready {
		s.notifyAdmin(ctx, event, n)
	}
	return &domain.ResponseResult{Outcome: outcome, NomineeName: n.Name, EventTitle: event.Title}, nil
}

// apply runs the status machine and persists the result with a conditional
// update. When another writer got there first the nominee is reloaded and the
// event re-evaluated against the fresh status.
func (s *nomineeService) apply(ctx context.Context, n *domain.Nominee, ev domain.StatusEvent) (*domain.Nominee, domain.ResponseOutcome, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		next, outcome, err := domain.Transition(n.Status, ev)
		if err != nil {
			return nil, "", err
		}
		if outcome == domain.OutcomeAlready {
			return n, outcome, nil
		}
		now := time.Now().UTC()
		ok, err := s.nomineeRepo.UpdateStatus(ctx, n.ID, n.Status, next, now)
		if err != nil {
			return nil, "", fmt.Errorf("update nominee status: %w", err)
		}
		if ok {
			n.Status = next
			n.UpdatedAt = now
			return n, outcome, nil
		}
		if n, err = s.getNominee(ctx, n.ID); err != nil {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("update nominee status: gave up after %d concurrent changes", maxTransitionAttempts)
}

func (s *nomineeService) notifyAdmin(ctx context.Context, event *domain.Event, n *domain.Nominee) {
	if s.adminEmail == "" {
		return
	}
	err := s.notifier.NotifyStatusChange(ctx, &domain.StatusChangeEmailData{
		Email:        s.adminEmail,
		NomineeName:  n.Name,
		NomineeEmail: n.Email,
		Department:   n.Department,
		EventTitle:   event.Title,
		Status:       n.Status,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "admin status notice not handed off", "nominee_id", n.ID, "err", err)
	}
}

func (s *nomineeService) getNominee(ctx context.Context, id string) (*domain.Nominee, error) {
	n, err := s.nomineeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get nominee: %w", err)
	}
	return n, nil
}
