package domain

import (
	"context"
	"time"
)

// LinkPurpose scopes a link token to one kind of action.
type LinkPurpose string

const (
	PurposeResponse LinkPurpose = "response"
	PurposeFeedback LinkPurpose = "feedback"
)

// LinkToken is an opaque, unguessable token that resolves to exactly one nominee
// for one purpose. A nominee holds at most one token per purpose.
type LinkToken struct {
	Token     string      `json:"token"`
	NomineeID string      `json:"nominee_id"`
	Purpose   LinkPurpose `json:"purpose"`
	CreatedAt time.Time   `json:"created_at"`
}

// ResponseLinks are the accept and reject URLs embedded in an invitation.
type ResponseLinks struct {
	AcceptURL string
	RejectURL string
}

// LinkTokenRepository persists link tokens.
type LinkTokenRepository interface {
	// GetOrCreate stores t unless the nominee already has a token for t.Purpose,
	// and returns whichever token is stored.
	GetOrCreate(ctx context.Context, t *LinkToken) (*LinkToken, error)
	Resolve(ctx context.Context, token string, purpose LinkPurpose) (string, error)
}

// LinkIssuer builds externally reachable links for nominees and resolves them back.
type LinkIssuer interface {
	IssueResponseLinks(ctx context.Context, n *Nominee) (ResponseLinks, error)
	IssueFeedbackLink(ctx context.Context, n *Nominee) (string, error)
	Resolve(ctx context.Context, token string, purpose LinkPurpose) (string, error)
}
