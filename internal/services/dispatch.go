package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"nomineetracker/internal/domain"
)

const csvTimeLayout = "2006-01-02 15:04:05"

var feedbackCSVHeader = []string{"Nominee Name", "Email", "Department", "Rating", "Comments", "Suggestions", "Submitted At"}

type dispatchService struct {
	eventRepo      domain.EventRepository
	nomineeRepo    domain.NomineeRepository
	feedbackRepo   domain.FeedbackRepository
	links          domain.LinkIssuer
	notifier       domain.Notifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

// DispatchServiceConfig carries the collaborators of the dispatch service.
type DispatchServiceConfig struct {
	EventRepo    domain.EventRepository
	NomineeRepo  domain.NomineeRepository
	FeedbackRepo domain.FeedbackRepository
	Links        domain.LinkIssuer
	Notifier     domain.Notifier
	Logger       *slog.Logger
	Timeout      time.Duration
}

func NewDispatchService(cfg DispatchServiceConfig) domain.DispatchService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &dispatchService{
		eventRepo:      cfg.EventRepo,
		nomineeRepo:    cfg.NomineeRepo,
		feedbackRepo:   cfg.FeedbackRepo,
		links:          cfg.Links,
		notifier:       cfg.Notifier,
		logger:         logger,
		contextTimeout: cfg.Timeout,
	}
}

// SendFeedbackRequests hands a feedback link to every attended nominee who has
// not submitted feedback yet. sent_count counts successful hand-offs.
func (s *dispatchService) SendFeedbackRequests(ctx context.Context, eventID string) (*domain.FeedbackRequestResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	nominees, err := s.nomineeRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list nominees: %w", err)
	}

	eligible, sent := 0, 0
	for _, n := range nominees {
		if n.Status != domain.StatusAttended || n.Feedback != nil {
			continue
		}
		eligible++
		link, err := s.links.IssueFeedbackLink(ctx, n)
		if err != nil {
			s.logger.WarnContext(ctx, "feedback link not issued", "nominee_id", n.ID, "err", err)
			continue
		}
		err = s.notifier.NotifyFeedbackRequest(ctx, &domain.FeedbackRequestEmailData{
			Email:       n.Email,
			NomineeName: n.Name,
			EventTitle:  event.Title,
			EventDate:   event.Date,
			EventVenue:  event.Venue,
			FeedbackURL: link,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "feedback request not handed off", "nominee_id", n.ID, "err", err)
			continue
		}
		sent++
	}

	result := &domain.FeedbackRequestResult{SentCount: sent}
	switch {
	case eligible == 0:
		result.Message = "No attended nominees are awaiting feedback."
	case sent == eligible:
		result.Message = fmt.Sprintf("Feedback requests sent to %d nominee(s).", sent)
	default:
		result.Message = fmt.Sprintf("Feedback requests sent to %d of %d nominee(s).", sent, eligible)
	}
	return result, nil
}

// ExportFeedbackCSV renders one row per submitted feedback in nominee creation order.
func (s *dispatchService) ExportFeedbackCSV(ctx context.Context, eventID string) (*domain.FeedbackExport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	entries, err := s.feedbackRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(feedbackCSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.NomineeName,
			e.NomineeEmail,
			e.NomineeDepartment,
			strconv.Itoa(e.Rating),
			e.Comments,
			e.Suggestions,
			e.SubmittedAt.UTC().Format(csvTimeLayout),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return &domain.FeedbackExport{Filename: exportFilename(event.Title), Content: buf.Bytes()}, nil
}

func exportFilename(title string) string {
	name := slug.Make(title)
	if name == "" {
		name = "event"
	}
	return name + "_feedback.csv"
}

func (s *dispatchService) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}
