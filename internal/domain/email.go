package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the invitation email.
type InvitationEmailData struct {
	Email            string `json:"email"`
	NomineeName      string `json:"nominee_name"`
	EventTitle       string `json:"event_title"`
	EventDescription string `json:"event_description"`
	EventDate        string `json:"event_date"`
	EventTime        string `json:"event_time"`
	EventVenue       string `json:"event_venue"`
	AcceptURL        string `json:"accept_url"`
	RejectURL        string `json:"reject_url"`
}

// FeedbackRequestEmailData holds data for the post-event feedback request.
type FeedbackRequestEmailData struct {
	Email       string `json:"email"`
	NomineeName string `json:"nominee_name"`
	EventTitle  string `json:"event_title"`
	EventDate   string `json:"event_date"`
	EventVenue  string `json:"event_venue"`
	FeedbackURL string `json:"feedback_url"`
}

// StatusChangeEmailData holds data for the admin notice sent when a nominee responds.
type StatusChangeEmailData struct {
	Email        string        `json:"email"`
	NomineeName  string        `json:"nominee_name"`
	NomineeEmail string        `json:"nominee_email"`
	Department   string        `json:"department"`
	EventTitle   string        `json:"event_title"`
	Status       NomineeStatus `json:"status"`
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
	SendFeedbackRequest(ctx context.Context, data *FeedbackRequestEmailData) error
	SendStatusChange(ctx context.Context, data *StatusChangeEmailData) error
}

// Notifier hands outbound mail off for delivery. A nil error means the message
// was accepted for delivery, not that it was delivered.
type Notifier interface {
	NotifyInvitation(ctx context.Context, data *InvitationEmailData) error
	NotifyFeedbackRequest(ctx context.Context, data *FeedbackRequestEmailData) error
	NotifyStatusChange(ctx context.Context, data *StatusChangeEmailData) error
}
