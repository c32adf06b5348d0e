package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"nomineetracker/internal/domain"
)

// BatchErrorDetails is reported in APIError.Details when a nominee batch is rejected.
type BatchErrorDetails struct {
	Index    int      `json:"index"`
	Messages []string `json:"messages"`
}

// WriteServiceError maps a service error onto the response envelope. Only
// unexpected errors are logged; their message is not exposed.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var batchErr *domain.BatchValidationError
	switch {
	case errors.As(err, &batchErr):
		writeError(w, http.StatusBadRequest, &APIError{
			Code:    ErrCodeValidation,
			Message: batchErr.Error(),
			Details: BatchErrorDetails{Index: batchErr.Index, Messages: batchErr.Messages},
		})
	case errors.Is(err, domain.ErrValidation):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidRating):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		WriteJSONError(w, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrAlreadySubmitted):
		WriteJSONError(w, http.StatusConflict, ErrCodeAlreadySubmitted, err.Error())
	case errors.Is(err, domain.ErrNotEligible):
		WriteJSONError(w, http.StatusUnprocessableEntity, ErrCodeNotEligible, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
