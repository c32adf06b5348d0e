package domain

import (
	"fmt"
	"strings"
)

// StatusEvent is an input to the nominee status machine.
type StatusEvent string

const (
	EventAccept StatusEvent = "accept"
	EventReject StatusEvent = "reject"
	EventAttend StatusEvent = "attend"
)

// ResponseOutcome is what a nominee sees after following an invitation link.
type ResponseOutcome string

const (
	OutcomeAccepted ResponseOutcome = "accepted"
	OutcomeRejected ResponseOutcome = "rejected"
	OutcomeAlready  ResponseOutcome = "already"
)

// ParseDecision maps the decision segment of a response link to a status event.
func ParseDecision(s string) (StatusEvent, error) {
	switch StatusEvent(strings.ToLower(strings.TrimSpace(s))) {
	case EventAccept:
		return EventAccept, nil
	case EventReject:
		return EventReject, nil
	}
	return "", fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, s)
}

// Transition applies ev to current and returns the next status.
//
//	Pending  --accept--> Accepted   (outcome accepted)
//	Pending  --reject--> Rejected   (outcome rejected)
//	Accepted --attend--> Attended
//
// Accept or reject on a non-Pending nominee leaves the status unchanged with
// outcome already. Attend from anything but Accepted fails with ErrInvalidTransition.
func Transition(current NomineeStatus, ev StatusEvent) (NomineeStatus, ResponseOutcome, error) {
	if !current.Valid() {
		return current, "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, current)
	}
	switch ev {
	case EventAccept, EventReject:
		if current != StatusPending {
			return current, OutcomeAlready, nil
		}
		if ev == EventAccept {
			return StatusAccepted, OutcomeAccepted, nil
		}
		return StatusRejected, OutcomeRejected, nil
	case EventAttend:
		if current != StatusAccepted {
			return current, "", fmt.Errorf("%w: only accepted nominees can be marked attended (current status %s)", ErrInvalidTransition, current)
		}
		return StatusAttended, "", nil
	}
	return current, "", fmt.Errorf("%w: unknown status event %q", ErrInvalidInput, ev)
}
