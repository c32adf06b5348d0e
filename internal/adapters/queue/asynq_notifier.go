package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"nomineetracker/internal/domain"
)

// enqueuer is the part of *asynq.Client the notifier needs.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type asynqNotifier struct {
	client enqueuer
	logger *slog.Logger
}

// NewAsynqNotifier returns a Notifier that enqueues mail tasks for cmd/worker.
func NewAsynqNotifier(client *asynq.Client, logger *slog.Logger) domain.Notifier {
	return newAsynqNotifier(client, logger)
}

func newAsynqNotifier(client enqueuer, logger *slog.Logger) *asynqNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &asynqNotifier{client: client, logger: logger}
}

func (n *asynqNotifier) NotifyInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	task, err := NewInvitationTask(data)
	if err != nil {
		return err
	}
	return n.enqueue(ctx, task, data.Email)
}

func (n *asynqNotifier) NotifyFeedbackRequest(ctx context.Context, data *domain.FeedbackRequestEmailData) error {
	if data == nil {
		return fmt.Errorf("feedback request email data is nil")
	}
	task, err := NewFeedbackRequestTask(data)
	if err != nil {
		return err
	}
	return n.enqueue(ctx, task, data.Email)
}

func (n *asynqNotifier) NotifyStatusChange(ctx context.Context, data *domain.StatusChangeEmailData) error {
	if data == nil {
		return fmt.Errorf("status change email data is nil")
	}
	task, err := NewNomineeStatusTask(data)
	if err != nil {
		return err
	}
	return n.enqueue(ctx, task, data.Email)
}

func (n *asynqNotifier) enqueue(ctx context.Context, task *asynq.Task, to string) error {
	info, err := n.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	n.logger.DebugContext(ctx, "mail task enqueued", "type", task.Type(), "id", info.ID, "queue", info.Queue, "to", to)
	return nil
}
