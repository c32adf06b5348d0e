package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is the single post-event evaluation a nominee may submit.
type Feedback struct {
	ID          string    `json:"id"`
	NomineeID   string    `json:"nominee_id"`
	Rating      int       `json:"rating"`
	Comments    string    `json:"comments"`
	Suggestions string    `json:"suggestions"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewFeedback returns feedback for nomineeID with trimmed free-text fields.
func NewFeedback(nomineeID string, rating int, comments, suggestions string, submittedAt time.Time) *Feedback {
	return &Feedback{
		NomineeID:   nomineeID,
		Rating:      rating,
		Comments:    strings.TrimSpace(comments),
		Suggestions: strings.TrimSpace(suggestions),
		SubmittedAt: submittedAt,
	}
}

// ValidateRating returns ErrInvalidRating unless rating is within MinRating..MaxRating.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidRating, MinRating, MaxRating)
	}
	return nil
}

// FeedbackEntry is feedback joined with the identifying fields of its nominee.
type FeedbackEntry struct {
	Feedback
	NomineeName       string `json:"nominee_name"`
	NomineeEmail      string `json:"nominee_email"`
	NomineeDepartment string `json:"nominee_department"`
}

// FeedbackInfo is what the public feedback form needs to render.
type FeedbackInfo struct {
	EventTitle  string `json:"event_title"`
	NomineeName string `json:"nominee_name"`
	HasFeedback bool   `json:"has_feedback"`
}

// FeedbackSubmission is the caller-supplied feedback payload.
type FeedbackSubmission struct {
	Rating      int    `json:"rating"`
	Comments    string `json:"comments"`
	Suggestions string `json:"suggestions"`
}

// FeedbackRequestResult summarizes a feedback-request dispatch.
type FeedbackRequestResult struct {
	SentCount int    `json:"sent_count"`
	Message   string `json:"message"`
}

// FeedbackExport is a rendered CSV export ready to be served as a download.
type FeedbackExport struct {
	Filename string
	Content  []byte
}

// FeedbackRepository persists feedback. Create returns ErrAlreadySubmitted when
// the nominee already has feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, f *Feedback) error
	GetByNomineeID(ctx context.Context, nomineeID string) (*Feedback, error)
	// ListByEventID returns feedback ordered by nominee creation order.
	ListByEventID(ctx context.Context, eventID string) ([]*FeedbackEntry, error)
}

// FeedbackService handles feedback collection.
type FeedbackService interface {
	Submit(ctx context.Context, nomineeID string, in FeedbackSubmission) (*Feedback, error)
	SubmitByToken(ctx context.Context, token string, in FeedbackSubmission) (*Feedback, error)
	GetInfo(ctx context.Context, nomineeID string) (*FeedbackInfo, error)
	GetInfoByToken(ctx context.Context, token string) (*FeedbackInfo, error)
	ListByEvent(ctx context.Context, eventID string) ([]*FeedbackEntry, error)
}

// DispatchService handles the bulk outbound flows for an event.
type DispatchService interface {
	SendFeedbackRequests(ctx context.Context, eventID string) (*FeedbackRequestResult, error)
	ExportFeedbackCSV(ctx context.Context, eventID string) (*FeedbackExport, error)
}
