package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"nomineetracker/internal/domain"
)

// NewServeMux routes mail tasks to the email service. A payload that cannot be
// decoded is never retried.
func NewServeMux(emails domain.EmailService, logger *slog.Logger) *asynq.ServeMux {
	if logger == nil {
		logger = slog.Default()
	}
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeInvitation, func(ctx context.Context, t *asynq.Task) error {
		var data domain.InvitationEmailData
		if err := decode(t, &data); err != nil {
			return err
		}
		return deliver(ctx, logger, t, emails.SendInvitation(ctx, &data))
	})
	mux.HandleFunc(TypeFeedbackRequest, func(ctx context.Context, t *asynq.Task) error {
		var data domain.FeedbackRequestEmailData
		if err := decode(t, &data); err != nil {
			return err
		}
		return deliver(ctx, logger, t, emails.SendFeedbackRequest(ctx, &data))
	})
	mux.HandleFunc(TypeNomineeStatus, func(ctx context.Context, t *asynq.Task) error {
		var data domain.StatusChangeEmailData
		if err := decode(t, &data); err != nil {
			return err
		}
		return deliver(ctx, logger, t, emails.SendStatusChange(ctx, &data))
	})
	return mux
}

func decode(t *asynq.Task, dest any) error {
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func deliver(ctx context.Context, logger *slog.Logger, t *asynq.Task, err error) error {
	if err != nil {
		logger.WarnContext(ctx, "mail task failed", "type", t.Type(), "err", err)
		return err
	}
	return nil
}
