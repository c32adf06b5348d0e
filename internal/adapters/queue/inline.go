package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nomineetracker/internal/domain"
)

const inlineSendTimeout = 30 * time.Second

// InlineNotifier delivers mail on background goroutines of the current process.
// At most limit deliveries run at once; a hand-off waits for a free slot until
// the caller's context is done.
type InlineNotifier struct {
	emails domain.EmailService
	logger *slog.Logger
	sem    chan struct{}
	wg     sync.WaitGroup
}

// NewInlineNotifier is used when no Redis queue is configured.
func NewInlineNotifier(emails domain.EmailService, limit int, logger *slog.Logger) *InlineNotifier {
	if limit < 1 {
		limit = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InlineNotifier{emails: emails, logger: logger, sem: make(chan struct{}, limit)}
}

func (n *InlineNotifier) NotifyInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	return n.dispatch(ctx, TypeInvitation, data.Email, func(ctx context.Context) error {
		return n.emails.SendInvitation(ctx, data)
	})
}

func (n *InlineNotifier) NotifyFeedbackRequest(ctx context.Context, data *domain.FeedbackRequestEmailData) error {
	if data == nil {
		return fmt.Errorf("feedback request email data is nil")
	}
	return n.dispatch(ctx, TypeFeedbackRequest, data.Email, func(ctx context.Context) error {
		return n.emails.SendFeedbackRequest(ctx, data)
	})
}

func (n *InlineNotifier) NotifyStatusChange(ctx context.Context, data *domain.StatusChangeEmailData) error {
	if data == nil {
		return fmt.Errorf("status change email data is nil")
	}
	return n.dispatch(ctx, TypeNomineeStatus, data.Email, func(ctx context.Context) error {
		return n.emails.SendStatusChange(ctx, data)
	})
}

func (n *InlineNotifier) dispatch(ctx context.Context, kind, to string, send func(context.Context) error) error {
	select {
	case n.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("dispatch %s: %w", kind, ctx.Err())
	}

	// The request that triggered the mail usually finishes first.
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), inlineSendTimeout)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()
		defer func() { <-n.sem }()
		if err := send(bg); err != nil {
			n.logger.WarnContext(bg, "mail delivery failed", "type", kind, "to", to, "err", err)
		}
	}()
	return nil
}

// Wait blocks until every dispatched delivery has finished.
func (n *InlineNotifier) Wait() {
	n.wg.Wait()
}
