package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a record or link token does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for malformed identifiers or request values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrValidation is wrapped by BatchValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned when a status change is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotEligible is returned when feedback is requested for a nominee who has not attended.
	ErrNotEligible = errors.New("nominee is not eligible for feedback")
	// ErrAlreadySubmitted is returned on a second feedback submission for the same nominee.
	ErrAlreadySubmitted = errors.New("feedback already submitted")
	// ErrInvalidRating is returned when a rating falls outside MinRating..MaxRating.
	ErrInvalidRating = errors.New("invalid rating")
)

// BatchValidationError reports the first offending entry of a nominee batch.
// Index is 1-based.
type BatchValidationError struct {
	Index    int
	Messages []string
}

func (e *BatchValidationError) Error() string {
	return fmt.Sprintf("entry #%d: %s", e.Index, strings.Join(e.Messages, "; "))
}

func (e *BatchValidationError) Unwrap() error {
	return ErrValidation
}
