package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"nomineetracker/internal/delivery/http/helpers"
	"nomineetracker/internal/domain"
)

// NomineeBatchRequest is the body of POST /events/{eventID}/nominees. It accepts
// either a JSON array of nominees or a single nominee object.
type NomineeBatchRequest []domain.NomineeDescriptor

// UnmarshalJSON implements json.Unmarshaler.
func (b *NomineeBatchRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New("nominees are required")
	}
	if trimmed[0] == '{' {
		var one domain.NomineeDescriptor
		if err := strictUnmarshal(trimmed, &one); err != nil {
			return err
		}
		*b = NomineeBatchRequest{one}
		return nil
	}
	var many []domain.NomineeDescriptor
	if err := strictUnmarshal(trimmed, &many); err != nil {
		return err
	}
	*b = many
	return nil
}

// strictUnmarshal keeps DisallowUnknownFields in effect below a custom UnmarshalJSON.
func strictUnmarshal(data []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

// AddNomineesSuccessResponse is the success response envelope for POST /events/{eventID}/nominees (201).
type AddNomineesSuccessResponse struct {
	Data  *domain.BatchResult `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListNomineesSuccessResponse is the success response envelope for GET /events/{eventID}/nominees (200).
type ListNomineesSuccessResponse struct {
	Data  []*domain.Nominee `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// NomineeSuccessResponse wraps a single nominee.
type NomineeSuccessResponse struct {
	Data  *domain.Nominee   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type NomineeController struct {
	Logger  *slog.Logger
	Service domain.NomineeService
}

func NewNomineeController(logger *slog.Logger, svc domain.NomineeService) *NomineeController {
	return &NomineeController{
		Logger:  logger,
		Service: svc,
	}
}

// AddNominees godoc
// @Summary Nominate employees for an event
// @Description The whole batch is validated before anything is stored; the first invalid entry rejects it.
// @Description Each created nominee gets an invitation with accept and reject links. Invitation hand-off problems are listed in mail_warnings.
// @Tags nominees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param nominees body []domain.NomineeDescriptor true "Nominees (array or single object)"
// @Success 201 {object} controllers.AddNomineesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error; error.details holds the batch result when some nominees were created"
// @Router /events/{eventID}/nominees [post]
func (c *NomineeController) AddNominees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req NomineeBatchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.AddNominees(r.Context(), eventID, req)
	if err != nil {
		if result != nil && len(result.Created) > 0 {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method,
				"created", len(result.Created), "err", err)
			helpers.WriteJSONErrorDetails(w, http.StatusInternalServerError, helpers.ErrCodeInternalError,
				fmt.Sprintf("batch stopped after %d nominees were created", len(result.Created)), result)
			return
		}
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// ListNominees godoc
// @Summary List the nominees of an event
// @Description In nomination order, each with its feedback or null.
// @Tags nominees
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListNomineesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/nominees [get]
func (c *NomineeController) ListNominees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathUUID(w, r, "eventID")
	if !ok {
		return
	}
	nominees, err := c.Service.ListNominees(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nominees)
}

// MarkAttended godoc
// @Summary Mark a nominee as attended
// @Description Only accepted nominees can be marked.
// @Tags nominees
// @Produce json
// @Security BearerAuth
// @Param nomineeID path string true "Nominee ID (UUID)"
// @Success 200 {object} controllers.NomineeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /nominees/{nomineeID}/attend [put]
func (c *NomineeController) MarkAttended(w http.ResponseWriter, r *http.Request) {
	nomineeID, ok := helpers.PathUUID(w, r, "nomineeID")
	if !ok {
		return
	}
	n, err := c.Service.MarkAttended(r.Context(), nomineeID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, n)
}

// DeleteNominee godoc
// @Summary Remove a nominee
// @Tags nominees
// @Produce json
// @Security BearerAuth
// @Param nomineeID path string true "Nominee ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /nominees/{nomineeID} [delete]
func (c *NomineeController) DeleteNominee(w http.ResponseWriter, r *http.Request) {
	nomineeID, ok := helpers.PathUUID(w, r, "nomineeID")
	if !ok {
		return
	}
	if err := c.Service.DeleteNominee(r.Context(), nomineeID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}
