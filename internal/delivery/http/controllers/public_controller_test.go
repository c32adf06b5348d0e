package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"nomineetracker/internal/delivery/http/helpers"
	"nomineetracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicController_Respond(t *testing.T) {
	tests := []struct {
		name         string
		decision     string
		result       *domain.ResponseResult
		fakeErr      error
		wantStatus   string
		wantName     string
		wantEvent    string
		wantDecision domain.StatusEvent
		wantCalled   bool
	}{
		{
			name:         "accept",
			decision:     "accept",
			result:       &domain.ResponseResult{Outcome: domain.OutcomeAccepted, NomineeName: "Ada Lovelace", EventTitle: "Go & You"},
			wantStatus:   "accepted",
			wantName:     "Ada Lovelace",
			wantEvent:    "Go & You",
			wantDecision: domain.EventAccept,
			wantCalled:   true,
		},
		{
			name:         "reject upper case",
			decision:     "REJECT",
			result:       &domain.ResponseResult{Outcome: domain.OutcomeRejected, NomineeName: "Bob", EventTitle: "Go"},
			wantStatus:   "rejected",
			wantName:     "Bob",
			wantEvent:    "Go",
			wantDecision: domain.EventReject,
			wantCalled:   true,
		},
		{
			name:         "second response",
			decision:     "reject",
			result:       &domain.ResponseResult{Outcome: domain.OutcomeAlready, NomineeName: "Bob", EventTitle: "Go"},
			wantStatus:   "already",
			wantName:     "Bob",
			wantEvent:    "Go",
			wantDecision: domain.EventReject,
			wantCalled:   true,
		},
		{
			name:       "unknown decision",
			decision:   "maybe",
			wantStatus: "invalid",
		},
		{
			name:         "unknown token",
			decision:     "accept",
			fakeErr:      domain.ErrNotFound,
			wantStatus:   "invalid",
			wantDecision: domain.EventAccept,
			wantCalled:   true,
		},
		{
			name:         "storage failure",
			decision:     "accept",
			fakeErr:      errBoom,
			wantStatus:   "invalid",
			wantDecision: domain.EventAccept,
			wantCalled:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeNomineeService{err: tt.fakeErr, response: tt.result}
			ctrl := NewPublicController(testLogger, fake, &fakeFeedbackService{}, "https://app.example.com/")
			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/respond/%s/%s", testToken, tt.decision), nil)
			req.SetPathValue("token", testToken)
			req.SetPathValue("decision", tt.decision)
			rr := httptest.NewRecorder()

			ctrl.Respond(rr, req)

			require.Equal(t, http.StatusFound, rr.Code)
			loc, err := url.Parse(rr.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "app.example.com", loc.Host)
			assert.Equal(t, "/response", loc.Path)
			assert.Equal(t, tt.wantStatus, loc.Query().Get("status"))
			assert.Equal(t, tt.wantName, loc.Query().Get("name"))
			assert.Equal(t, tt.wantEvent, loc.Query().Get("event"))
			assert.Equal(t, tt.wantCalled, fake.respondCalled)
			if tt.wantCalled {
				assert.Equal(t, testToken, fake.lastToken)
				assert.Equal(t, tt.wantDecision, fake.lastDecision)
			}
		})
	}
}

func TestPublicController_GetFeedbackForm(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "unknown token", fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound, wantMsg: "invalid or expired link"},
		{name: "not attended", fakeErr: domain.ErrNotEligible, wantStatus: http.StatusUnprocessableEntity, wantCode: helpers.ErrCodeNotEligible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeFeedbackService{err: tt.fakeErr, info: &domain.FeedbackInfo{EventTitle: "Go", NomineeName: "Ada"}}
			ctrl := NewPublicController(testLogger, &fakeNomineeService{}, fb, "https://app.example.com")
			req := httptest.NewRequest(http.MethodGet, "/feedback/"+testToken, nil)
			req.SetPathValue("token", testToken)
			rr := httptest.NewRecorder()

			ctrl.GetFeedbackForm(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, testToken, fb.lastToken)
			data, apiErr := decodeEnvelope(t, rr)
			if tt.wantCode == "" {
				assert.JSONEq(t, `{"event_title":"Go","nominee_name":"Ada","has_feedback":false}`, string(data))
				return
			}
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, apiErr.Message)
			}
		})
	}
}

func TestPublicController_SubmitFeedback(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{name: "success", body: `{"rating":5,"comments":"great","suggestions":"more labs"}`, wantStatus: http.StatusCreated},
		{name: "second submission", body: `{"rating":4}`, fakeErr: domain.ErrAlreadySubmitted, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeAlreadySubmitted},
		{name: "not attended", body: `{"rating":4}`, fakeErr: domain.ErrNotEligible, wantStatus: http.StatusUnprocessableEntity, wantCode: helpers.ErrCodeNotEligible},
		{name: "rating out of range", body: `{"rating":9}`, fakeErr: fmt.Errorf("%w: 9", domain.ErrInvalidRating), wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "unknown token", body: `{"rating":4}`, fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "comments too long", body: `{"rating":4,"comments":"` + strings.Repeat("x", 5001) + `"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeValidation},
		{name: "rating not a number", body: `{"rating":"five"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeFeedbackService{err: tt.fakeErr, feedback: &domain.Feedback{ID: "fb-1", NomineeID: testNomineeID, Rating: 5}}
			ctrl := NewPublicController(testLogger, &fakeNomineeService{}, fb, "https://app.example.com")
			req := httptest.NewRequest(http.MethodPost, "/feedback/"+testToken, strings.NewReader(tt.body))
			req.SetPathValue("token", testToken)
			rr := httptest.NewRecorder()

			ctrl.SubmitFeedback(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			_, apiErr := decodeEnvelope(t, rr)
			if tt.wantCode == "" {
				assert.Nil(t, apiErr)
				assert.Equal(t, domain.FeedbackSubmission{Rating: 5, Comments: "great", Suggestions: "more labs"}, fb.lastSubmission)
				return
			}
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}
