package controllers

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"nomineetracker/internal/delivery/http/helpers"
	"nomineetracker/internal/domain"
)

// SendFeedbackRequestsSuccessResponse is the success response envelope for POST /events/{eventID}/feedback-requests (200).
type SendFeedbackRequestsSuccessResponse struct {
	Data  *domain.FeedbackRequestResult `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// ListFeedbackSuccessResponse is the success response envelope for GET /events/{eventID}/feedback (200).
type ListFeedbackSuccessResponse struct {
	Data  []*domain.FeedbackEntry `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// FeedbackController serves the admin side of feedback collection.
type FeedbackController struct {
	Logger   *slog.Logger
	Feedback domain.FeedbackService
	Dispatch domain.DispatchService
}

func NewFeedbackController(logger *slog.Logger, feedback domain.FeedbackService, dispatch domain.DispatchService) *FeedbackController {
	return &FeedbackController{
		Logger:   logger,
		Feedback: feedback,
		Dispatch: dispatch,
	}
}

// SendFeedbackRequests godoc
// @Summary Ask attended nominees for feedback
// @Description Sends one feedback link to every attended nominee who has not submitted feedback yet.
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.SendFeedbackRequestsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/feedback-requests [post]
func (c *FeedbackController) SendFeedbackRequests(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	result, err := c.Dispatch.SendFeedbackRequests(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListFeedback godoc
// @Summary List submitted feedback for an event
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListFeedbackSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/feedback [get]
func (c *FeedbackController) ListFeedback(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	entries, err := c.Feedback.ListByEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// ExportFeedbackCSV godoc
// @Summary Download event feedback as CSV
// @Tags feedback
// @Produce text/csv
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {file} file "CSV attachment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/feedback.csv [get]
func (c *FeedbackController) ExportFeedbackCSV(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	export, err := c.Dispatch.ExportFeedbackCSV(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Content); err != nil {
		c.Logger.WarnContext(r.Context(), "csv write failed", "path", r.URL.Path, "err", err)
	}
}
