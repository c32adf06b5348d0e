package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomineetracker/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var errBoom = errors.New("boom")

// fakeEmailService implements domain.EmailService and records what it was asked to send.
type fakeEmailService struct {
	mu          sync.Mutex
	invitations []*domain.InvitationEmailData
	requests    []*domain.FeedbackRequestEmailData
	statuses    []*domain.StatusChangeEmailData
	err         error
	block       chan struct{}
	running     atomic.Int32
	maxRunning  atomic.Int32
}

func (f *fakeEmailService) enter() {
	cur := f.running.Add(1)
	for {
		peak := f.maxRunning.Load()
		if cur <= peak || f.maxRunning.CompareAndSwap(peak, cur) {
			break
		}
	}
	if f.block != nil {
		<-f.block
	}
	f.running.Add(-1)
}

func (f *fakeEmailService) SendInvitation(_ context.Context, data *domain.InvitationEmailData) error {
	f.enter()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invitations = append(f.invitations, data)
	return f.err
}

func (f *fakeEmailService) SendFeedbackRequest(_ context.Context, data *domain.FeedbackRequestEmailData) error {
	f.enter()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, data)
	return f.err
}

func (f *fakeEmailService) SendStatusChange(_ context.Context, data *domain.StatusChangeEmailData) error {
	f.enter()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, data)
	return f.err
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: MailQueue, Type: task.Type()}, nil
}

func TestAsynqNotifier_Enqueues(t *testing.T) {
	ctx := context.Background()
	client := &fakeEnqueuer{}
	n := newAsynqNotifier(client, testLogger)

	require.NoError(t, n.NotifyInvitation(ctx, &domain.InvitationEmailData{Email: "ada@x.com", AcceptURL: "http://api/respond/t/accept"}))
	require.NoError(t, n.NotifyFeedbackRequest(ctx, &domain.FeedbackRequestEmailData{Email: "bob@x.com"}))
	require.NoError(t, n.NotifyStatusChange(ctx, &domain.StatusChangeEmailData{Email: "admin@x.com", Status: domain.StatusAccepted}))

	require.Len(t, client.tasks, 3)
	assert.Equal(t, TypeInvitation, client.tasks[0].Type())
	assert.Equal(t, TypeFeedbackRequest, client.tasks[1].Type())
	assert.Equal(t, TypeNomineeStatus, client.tasks[2].Type())

	var inv domain.InvitationEmailData
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &inv))
	assert.Equal(t, "ada@x.com", inv.Email)
	assert.Equal(t, "http://api/respond/t/accept", inv.AcceptURL)
}

func TestAsynqNotifier_Errors(t *testing.T) {
	ctx := context.Background()
	n := newAsynqNotifier(&fakeEnqueuer{err: errBoom}, testLogger)

	err := n.NotifyInvitation(ctx, &domain.InvitationEmailData{Email: "ada@x.com"})
	require.ErrorIs(t, err, errBoom)
	require.Error(t, n.NotifyStatusChange(ctx, nil))
}

func TestServeMux_RoutesTasks(t *testing.T) {
	ctx := context.Background()
	emails := &fakeEmailService{}
	mux := NewServeMux(emails, testLogger)

	inv, err := NewInvitationTask(&domain.InvitationEmailData{Email: "ada@x.com"})
	require.NoError(t, err)
	req, err := NewFeedbackRequestTask(&domain.FeedbackRequestEmailData{Email: "bob@x.com"})
	require.NoError(t, err)
	st, err := NewNomineeStatusTask(&domain.StatusChangeEmailData{Email: "admin@x.com", Status: domain.StatusRejected})
	require.NoError(t, err)

	require.NoError(t, mux.ProcessTask(ctx, inv))
	require.NoError(t, mux.ProcessTask(ctx, req))
	require.NoError(t, mux.ProcessTask(ctx, st))

	require.Len(t, emails.invitations, 1)
	assert.Equal(t, "ada@x.com", emails.invitations[0].Email)
	require.Len(t, emails.requests, 1)
	assert.Equal(t, "bob@x.com", emails.requests[0].Email)
	require.Len(t, emails.statuses, 1)
	assert.Equal(t, domain.StatusRejected, emails.statuses[0].Status)
}

func TestServeMux_Failures(t *testing.T) {
	ctx := context.Background()

	mux := NewServeMux(&fakeEmailService{}, testLogger)
	err := mux.ProcessTask(ctx, asynq.NewTask(TypeInvitation, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	mux = NewServeMux(&fakeEmailService{err: errBoom}, testLogger)
	task, err := NewInvitationTask(&domain.InvitationEmailData{Email: "ada@x.com"})
	require.NoError(t, err)
	err = mux.ProcessTask(ctx, task)
	require.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestInlineNotifier_DeliversInBackground(t *testing.T) {
	emails := &fakeEmailService{}
	n := NewInlineNotifier(emails, 2, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, n.NotifyInvitation(ctx, &domain.InvitationEmailData{Email: "ada@x.com"}))
	require.NoError(t, n.NotifyFeedbackRequest(ctx, &domain.FeedbackRequestEmailData{Email: "bob@x.com"}))
	require.NoError(t, n.NotifyStatusChange(ctx, &domain.StatusChangeEmailData{Email: "admin@x.com"}))
	cancel()
	n.Wait()

	assert.Len(t, emails.invitations, 1)
	assert.Len(t, emails.requests, 1)
	assert.Len(t, emails.statuses, 1)
}

func TestInlineNotifier_BoundsConcurrency(t *testing.T) {
	emails := &fakeEmailService{block: make(chan struct{})}
	n := NewInlineNotifier(emails, 2, testLogger)
	ctx := context.Background()

	require.NoError(t, n.NotifyInvitation(ctx, &domain.InvitationEmailData{Email: "a@x.com"}))
	require.NoError(t, n.NotifyInvitation(ctx, &domain.InvitationEmailData{Email: "b@x.com"}))

	// Both slots are taken, so a third hand-off gives up when its context ends.
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := n.NotifyInvitation(short, &domain.InvitationEmailData{Email: "c@x.com"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(emails.block)
	n.Wait()
	assert.Len(t, emails.invitations, 2)
	assert.LessOrEqual(t, emails.maxRunning.Load(), int32(2))
}

func TestInlineNotifier_FailureIsLogged(t *testing.T) {
	n := NewInlineNotifier(&fakeEmailService{err: errBoom}, 1, testLogger)
	require.NoError(t, n.NotifyInvitation(context.Background(), &domain.InvitationEmailData{Email: "a@x.com"}))
	n.Wait()
	require.Error(t, n.NotifyInvitation(context.Background(), nil))
}
