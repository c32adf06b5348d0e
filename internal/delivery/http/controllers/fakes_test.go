package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"nomineetracker/internal/delivery/http/helpers"
	"nomineetracker/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var errBoom = errors.New("connection reset")

const (
	testEventID   = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	testNomineeID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a6c"
	testToken     = "AbCdEfGhIjKlMnOpQrStUvWxYz012345"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err             error
	list            []*domain.EventSummary
	detail          *domain.EventDetail
	lastCreateEvent *domain.Event
	lastEventID     string
}

func (f *fakeEventService) CreateEvent(_ context.Context, e *domain.Event) error {
	f.lastCreateEvent = e
	if f.err != nil {
		return f.err
	}
	e.ID = testEventID
	return nil
}

func (f *fakeEventService) ListEvents(_ context.Context) ([]*domain.EventSummary, error) {
	return f.list, f.err
}

func (f *fakeEventService) GetEvent(_ context.Context, id string) (*domain.EventDetail, error) {
	f.lastEventID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, id string) error {
	f.lastEventID = id
	return f.err
}

// fakeNomineeService implements domain.NomineeService for handler tests.
type fakeNomineeService struct {
	err             error
	batch           *domain.BatchResult
	partial         *domain.BatchResult // returned alongside err
	nominees        []*domain.Nominee
	nominee         *domain.Nominee
	response        *domain.ResponseResult
	lastEventID     string
	lastNomineeID   string
	lastDescriptors []domain.NomineeDescriptor
	lastToken       string
	lastDecision    domain.StatusEvent
	respondCalled   bool
}

func (f *fakeNomineeService) AddNominees(_ context.Context, eventID string, d []domain.NomineeDescriptor) (*domain.BatchResult, error) {
	f.lastEventID = eventID
	f.lastDescriptors = d
	if f.err != nil {
		return f.partial, f.err
	}
	return f.batch, nil
}

func (f *fakeNomineeService) ListNominees(_ context.Context, eventID string) ([]*domain.Nominee, error) {
	f.lastEventID = eventID
	return f.nominees, f.err
}

func (f *fakeNomineeService) MarkAttended(_ context.Context, nomineeID string) (*domain.Nominee, error) {
	f.lastNomineeID = nomineeID
	if f.err != nil {
		return nil, f.err
	}
	return f.nominee, nil
}

func (f *fakeNomineeService) DeleteNominee(_ context.Context, nomineeID string) error {
	f.lastNomineeID = nomineeID
	return f.err
}

func (f *fakeNomineeService) Respond(_ context.Context, token string, decision domain.StatusEvent) (*domain.ResponseResult, error) {
	f.respondCalled = true
	f.lastToken = token
	f.lastDecision = decision
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

// fakeFeedbackService implements domain.FeedbackService and domain.DispatchService.
type fakeFeedbackService struct {
	err            error
	info           *domain.FeedbackInfo
	feedback       *domain.Feedback
	entries        []*domain.FeedbackEntry
	requestResult  *domain.FeedbackRequestResult
	export         *domain.FeedbackExport
	lastToken      string
	lastEventID    string
	lastSubmission domain.FeedbackSubmission
}

func (f *fakeFeedbackService) Submit(_ context.Context, _ string, in domain.FeedbackSubmission) (*domain.Feedback, error) {
	f.lastSubmission = in
	return f.feedback, f.err
}

func (f *fakeFeedbackService) SubmitByToken(_ context.Context, token string, in domain.FeedbackSubmission) (*domain.Feedback, error) {
	f.lastToken = token
	f.lastSubmission = in
	if f.err != nil {
		return nil, f.err
	}
	return f.feedback, nil
}

func (f *fakeFeedbackService) GetInfo(_ context.Context, _ string) (*domain.FeedbackInfo, error) {
	return f.info, f.err
}

func (f *fakeFeedbackService) GetInfoByToken(_ context.Context, token string) (*domain.FeedbackInfo, error) {
	f.lastToken = token
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func (f *fakeFeedbackService) ListByEvent(_ context.Context, eventID string) ([]*domain.FeedbackEntry, error) {
	f.lastEventID = eventID
	return f.entries, f.err
}

func (f *fakeFeedbackService) SendFeedbackRequests(_ context.Context, eventID string) (*domain.FeedbackRequestResult, error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.requestResult, nil
}

func (f *fakeFeedbackService) ExportFeedbackCSV(_ context.Context, eventID string) (*domain.FeedbackExport, error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.export, nil
}

// decodeEnvelope decodes the response body into the API envelope with Data left raw.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) (json.RawMessage, *helpers.APIError) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	return envelope.Data, envelope.Error
}
