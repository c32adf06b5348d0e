package domain

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// NomineeStatus is the lifecycle state of a nominee.
type NomineeStatus string

const (
	StatusPending  NomineeStatus = "Pending"
	StatusAccepted NomineeStatus = "Accepted"
	StatusRejected NomineeStatus = "Rejected"
	StatusAttended NomineeStatus = "Attended"
)

// Valid reports whether s is one of the four known statuses.
func (s NomineeStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusAttended:
		return true
	}
	return false
}

// Nominee is a person invited to an event.
type Nominee struct {
	ID         string        `json:"id"`
	EventID    string        `json:"event_id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	EmployeeID string        `json:"employee_id"`
	Department string        `json:"department"`
	Status     NomineeStatus `json:"status"`
	Feedback   *Feedback     `json:"feedback"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// NewNominee returns a Pending nominee for eventID built from a normalized descriptor.
func NewNominee(eventID string, d NomineeDescriptor, now time.Time) *Nominee {
	return &Nominee{
		EventID:    eventID,
		Name:       d.Name,
		Email:      d.Email,
		EmployeeID: d.EmployeeID,
		Department: d.Department,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NomineeDescriptor is the caller-supplied data for a new nominee.
type NomineeDescriptor struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employee_id"`
	Department string `json:"department"`
}

// Normalize trims every field and lower-cases the email.
func (d NomineeDescriptor) Normalize() NomineeDescriptor {
	return NomineeDescriptor{
		Name:       strings.TrimSpace(d.Name),
		Email:      strings.ToLower(strings.TrimSpace(d.Email)),
		EmployeeID: strings.TrimSpace(d.EmployeeID),
		Department: strings.TrimSpace(d.Department),
	}
}

// Validate checks a normalized descriptor.
func (d NomineeDescriptor) Validate() []string {
	var errs []string
	if d.Name == "" {
		errs = append(errs, "name is required")
	} else if len(d.Name) > 255 {
		errs = append(errs, "name must be at most 255 characters")
	}
	if d.Email == "" {
		errs = append(errs, "email is required")
	} else if addr, err := mail.ParseAddress(d.Email); err != nil || addr.Address != d.Email {
		errs = append(errs, "email is not a valid address")
	}
	if d.EmployeeID == "" {
		errs = append(errs, "employee_id is required")
	} else if len(d.EmployeeID) > 50 {
		errs = append(errs, "employee_id must be at most 50 characters")
	}
	if d.Department == "" {
		errs = append(errs, "department is required")
	} else if len(d.Department) > 100 {
		errs = append(errs, "department must be at most 100 characters")
	}
	return errs
}

// ValidateBatch normalizes and validates every descriptor. It stops at the first
// invalid entry and returns a *BatchValidationError naming it, so callers can
// reject the batch before anything is persisted. Repeated emails within the
// batch are rejected.
func ValidateBatch(descriptors []NomineeDescriptor) ([]NomineeDescriptor, error) {
	if len(descriptors) == 0 {
		return nil, &BatchValidationError{Index: 0, Messages: []string{"at least one nominee is required"}}
	}
	out := make([]NomineeDescriptor, 0, len(descriptors))
	seen := make(map[string]int, len(descriptors))
	for i, raw := range descriptors {
		d := raw.Normalize()
		if errs := d.Validate(); len(errs) > 0 {
			return nil, &BatchValidationError{Index: i + 1, Messages: errs}
		}
		if first, dup := seen[d.Email]; dup {
			return nil, &BatchValidationError{
				Index:    i + 1,
				Messages: []string{fmt.Sprintf("email duplicates entry #%d", first)},
			}
		}
		seen[d.Email] = i + 1
		out = append(out, d)
	}
	return out, nil
}

// MailWarning records an invitation that could not be handed off for a created nominee.
type MailWarning struct {
	NomineeID string `json:"nominee_id"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// BatchResult is the outcome of adding a batch of nominees.
type BatchResult struct {
	Created      []*Nominee    `json:"created"`
	MailWarnings []MailWarning `json:"mail_warnings"`
}

// ResponseResult is the outcome of an invitation response.
type ResponseResult struct {
	Outcome     ResponseOutcome `json:"outcome"`
	NomineeName string          `json:"nominee_name"`
	EventTitle  string          `json:"event_title"`
}

// NomineeRepository persists nominees.
type NomineeRepository interface {
	Create(ctx context.Context, n *Nominee) error
	GetByID(ctx context.Context, id string) (*Nominee, error)
	// ListByEventID returns nominees in creation order with their feedback attached.
	ListByEventID(ctx context.Context, eventID string) ([]*Nominee, error)
	// UpdateStatus moves a nominee from one status to another and reports
	// whether the row still had the expected status.
	UpdateStatus(ctx context.Context, id string, from, to NomineeStatus, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	// CountStatusesByEvent returns per-event status counts for all events.
	CountStatusesByEvent(ctx context.Context) (map[string]map[NomineeStatus]int, error)
}

// NomineeService handles nominee lifecycle use cases.
type NomineeService interface {
	AddNominees(ctx context.Context, eventID string, descriptors []NomineeDescriptor) (*BatchResult, error)
	ListNominees(ctx context.Context, eventID string) ([]*Nominee, error)
	MarkAttended(ctx context.Context, nomineeID string) (*Nominee, error)
	DeleteNominee(ctx context.Context, nomineeID string) error
	Respond(ctx context.Context, token string, decision StatusEvent) (*ResponseResult, error)
}
