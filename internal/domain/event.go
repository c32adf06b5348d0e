package domain

import (
	"context"
	"strings"
	"time"
)

const (
	// EventDateLayout is the calendar date format for Event.Date.
	EventDateLayout = "2006-01-02"
	// EventTimeLayout is the time-of-day format for Event.Time.
	EventTimeLayout = "15:04"
)

// Event is a scheduled training session.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Venue       string    `json:"venue"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEvent builds an Event with trimmed fields.
func NewEvent(title, description, date, timeOfDay, venue string, createdAt time.Time) *Event {
	return &Event{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Date:        strings.TrimSpace(date),
		Time:        strings.TrimSpace(timeOfDay),
		Venue:       strings.TrimSpace(venue),
		CreatedAt:   createdAt,
	}
}

// Validate returns one message per violated rule; empty means valid.
func (e *Event) Validate() []string {
	var errs []string
	if e.Title == "" {
		errs = append(errs, "title is required")
	} else if len(e.Title) > 255 {
		errs = append(errs, "title must be at most 255 characters")
	}
	if _, err := time.Parse(EventDateLayout, e.Date); err != nil {
		errs = append(errs, "date must be formatted as YYYY-MM-DD")
	}
	if _, err := time.Parse(EventTimeLayout, e.Time); err != nil {
		errs = append(errs, "time must be formatted as HH:MM")
	}
	if e.Venue == "" {
		errs = append(errs, "venue is required")
	} else if len(e.Venue) > 255 {
		errs = append(errs, "venue must be at most 255 characters")
	}
	return errs
}

// EventSummary is an event with its derived nominee counts.
type EventSummary struct {
	Event
	EventCounts
}

// EventDetail is an event summary plus its nominees in creation order.
type EventDetail struct {
	EventSummary
	Nominees []*Nominee `json:"nominees"`
}

// EventRepository persists events. Deleting an event removes its nominees, feedback and link tokens.
type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService handles event use cases.
type EventService interface {
	CreateEvent(ctx context.Context, e *Event) error
	ListEvents(ctx context.Context) ([]*EventSummary, error)
	GetEvent(ctx context.Context, id string) (*EventDetail, error)
	DeleteEvent(ctx context.Context, id string) error
}
