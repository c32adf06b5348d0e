package services

import (
	"context"
	"fmt"
	"log"

	"nomineetracker/internal/domain"
)

const (
	templateInvitation      = "invitation"
	templateFeedbackRequest = "feedback_request"
	templateNomineeStatus   = "nominee_status"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

func (s *emailService) send(to, templateName string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	log.Printf("[EMAIL] %s email sent to %s", templateName, to)
	return nil
}

// SendInvitation sends the invitation with accept and reject links.
func (s *emailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	return s.send(data.Email, templateInvitation, data)
}

// SendFeedbackRequest sends the post-event feedback link.
func (s *emailService) SendFeedbackRequest(ctx context.Context, data *domain.FeedbackRequestEmailData) error {
	if data == nil {
		return fmt.Errorf("feedback request email data is nil")
	}
	return s.send(data.Email, templateFeedbackRequest, data)
}

// SendStatusChange notifies the administrator about a nominee response.
func (s *emailService) SendStatusChange(ctx context.Context, data *domain.StatusChangeEmailData) error {
	if data == nil {
		return fmt.Errorf("status change email data is nil")
	}
	return s.send(data.Email, templateNomineeStatus, data)
}
