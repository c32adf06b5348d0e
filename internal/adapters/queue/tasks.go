// Package queue hands outbound mail to a background worker, either through a
// Redis-backed asynq queue or through a bounded in-process dispatcher.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"nomineetracker/internal/domain"
)

// Task types consumed by the worker.
const (
	TypeInvitation      = "email:invitation"
	TypeFeedbackRequest = "email:feedback_request"
	TypeNomineeStatus   = "email:nominee_status"
)

// MailQueue is the asynq queue every mail task is enqueued on.
const MailQueue = "mail"

const (
	mailMaxRetry    = 5
	mailTaskTimeout = 30 * time.Second
)

func mailOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(MailQueue),
		asynq.MaxRetry(mailMaxRetry),
		asynq.Timeout(mailTaskTimeout),
	}
}

// NewInvitationTask builds the task that delivers an invitation email.
func NewInvitationTask(data *domain.InvitationEmailData) (*asynq.Task, error) {
	return newTask(TypeInvitation, data)
}

// NewFeedbackRequestTask builds the task that delivers a feedback request email.
func NewFeedbackRequestTask(data *domain.FeedbackRequestEmailData) (*asynq.Task, error) {
	return newTask(TypeFeedbackRequest, data)
}

// NewNomineeStatusTask builds the task that tells the administrator about a response.
func NewNomineeStatusTask(data *domain.StatusChangeEmailData) (*asynq.Task, error) {
	return newTask(TypeNomineeStatus, data)
}

func newTask(typename string, data any) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typename, err)
	}
	return asynq.NewTask(typename, payload, mailOptions()...), nil
}
