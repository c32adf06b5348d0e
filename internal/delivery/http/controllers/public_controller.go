package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"nomineetracker/internal/delivery/http/helpers"
	"nomineetracker/internal/domain"
)

// Values of the status query parameter on the frontend response page.
const (
	responsePageInvalid = "invalid"
	invalidLinkMessage  = "invalid or expired link"
)

// SubmitFeedbackRequest is the request body for POST /feedback/{token}.
// Rating is checked by the service so that eligibility errors win.
type SubmitFeedbackRequest struct {
	Rating      int    `json:"rating" example:"5"`
	Comments    string `json:"comments"`
	Suggestions string `json:"suggestions"`
}

// Validate implements Validator.
func (s SubmitFeedbackRequest) Validate() []string {
	var errs []string
	if len(s.Comments) > 5000 {
		errs = append(errs, "comments must be at most 5000 characters")
	}
	if len(s.Suggestions) > 5000 {
		errs = append(errs, "suggestions must be at most 5000 characters")
	}
	return errs
}

// FeedbackInfoSuccessResponse is the success response envelope for GET /feedback/{token} (200).
type FeedbackInfoSuccessResponse struct {
	Data  *domain.FeedbackInfo `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// FeedbackSuccessResponse is the success response envelope for POST /feedback/{token} (201).
type FeedbackSuccessResponse struct {
	Data  *domain.Feedback  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PublicController serves the links sent to nominees. It never tells a wrong
// token apart from a deleted nominee.
type PublicController struct {
	Logger      *slog.Logger
	Nominees    domain.NomineeService
	Feedback    domain.FeedbackService
	FrontendURL string
}

func NewPublicController(logger *slog.Logger, nominees domain.NomineeService, feedback domain.FeedbackService, frontendURL string) *PublicController {
	return &PublicController{
		Logger:      logger,
		Nominees:    nominees,
		Feedback:    feedback,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Respond godoc
// @Summary Accept or decline an invitation
// @Description Target of the links in the invitation email. Always redirects to the frontend response page
// @Description with status accepted, rejected, already or invalid.
// @Tags public
// @Param token path string true "Response link token"
// @Param decision path string true "accept or reject"
// @Success 302 "Redirect to {FRONTEND_URL}/response"
// @Router /respond/{token}/{decision} [get]
func (c *PublicController) Respond(w http.ResponseWriter, r *http.Request) {
	decision, err := domain.ParseDecision(r.PathValue("decision"))
	if err != nil {
		c.redirect(w, r, responsePageInvalid, nil)
		return
	}
	result, err := c.Nominees.Respond(r.Context(), r.PathValue("token"), decision)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidInput) {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", "/respond", "method", r.Method, "err", err)
		}
		c.redirect(w, r, responsePageInvalid, nil)
		return
	}
	c.redirect(w, r, string(result.Outcome), result)
}

func (c *PublicController) redirect(w http.ResponseWriter, r *http.Request, status string, result *domain.ResponseResult) {
	q := url.Values{}
	q.Set("status", status)
	if result != nil {
		q.Set("name", result.NomineeName)
		q.Set("event", result.EventTitle)
	}
	http.Redirect(w, r, c.FrontendURL+"/response?"+q.Encode(), http.StatusFound)
}

// GetFeedbackForm godoc
// @Summary Describe the feedback form behind a feedback link
// @Tags public
// @Produce json
// @Param token path string true "Feedback link token"
// @Success 200 {object} controllers.FeedbackInfoSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: not_eligible"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /feedback/{token} [get]
func (c *PublicController) GetFeedbackForm(w http.ResponseWriter, r *http.Request) {
	info, err := c.Feedback.GetInfoByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		c.writeLinkError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, info)
}

// SubmitFeedback godoc
// @Summary Submit feedback through a feedback link
// @Description Accepted once per nominee, and only after the nominee attended.
// @Tags public
// @Accept json
// @Produce json
// @Param token path string true "Feedback link token"
// @Param feedback body SubmitFeedbackRequest true "Rating 1-5 plus optional comments and suggestions"
// @Success 201 {object} controllers.FeedbackSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_submitted"
// @Failure 422 {object} helpers.APIResponse "error.code: not_eligible"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /feedback/{token} [post]
func (c *PublicController) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	fb, err := c.Feedback.SubmitByToken(r.Context(), r.PathValue("token"), domain.FeedbackSubmission{
		Rating:      req.Rating,
		Comments:    req.Comments,
		Suggestions: req.Suggestions,
	})
	if err != nil {
		c.writeLinkError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, fb)
}

func (c *PublicController) writeLinkError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, invalidLinkMessage)
		return
	}
	helpers.WriteServiceError(w, r, c.Logger, err)
}
