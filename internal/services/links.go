package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"nomineetracker/internal/domain"
)

// linkTokenLength gives ~190 bits over nanoid's 64-symbol URL-safe alphabet.
const linkTokenLength = 32

var linkTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{32}$`)

type linkIssuer struct {
	repo        domain.LinkTokenRepository
	backendURL  string
	frontendURL string
	newToken    func() (string, error)
}

// NewLinkIssuer returns a LinkIssuer that builds response links on backendURL
// and feedback links on frontendURL.
func NewLinkIssuer(repo domain.LinkTokenRepository, backendURL, frontendURL string) domain.LinkIssuer {
	return &linkIssuer{
		repo:        repo,
		backendURL:  strings.TrimSuffix(backendURL, "/"),
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		newToken:    func() (string, error) { return gonanoid.New(linkTokenLength) },
	}
}

func (l *linkIssuer) token(ctx context.Context, nomineeID string, purpose domain.LinkPurpose) (string, error) {
	candidate, err := l.newToken()
	if err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	stored, err := l.repo.GetOrCreate(ctx, &domain.LinkToken{
		Token:     candidate,
		NomineeID: nomineeID,
		Purpose:   purpose,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("store %s link token: %w", purpose, err)
	}
	return stored.Token, nil
}

func (l *linkIssuer) IssueResponseLinks(ctx context.Context, n *domain.Nominee) (domain.ResponseLinks, error) {
	tok, err := l.token(ctx, n.ID, domain.PurposeResponse)
	if err != nil {
		return domain.ResponseLinks{}, err
	}
	base := l.backendURL + "/respond/" + url.PathEscape(tok)
	return domain.ResponseLinks{
		AcceptURL: base + "/" + string(domain.EventAccept),
		RejectURL: base + "/" + string(domain.EventReject),
	}, nil
}

func (l *linkIssuer) IssueFeedbackLink(ctx context.Context, n *domain.Nominee) (string, error) {
	tok, err := l.token(ctx, n.ID, domain.PurposeFeedback)
	if err != nil {
		return "", err
	}
	return l.frontendURL + "/feedback/" + url.PathEscape(tok), nil
}

// Resolve returns ErrNotFound for malformed tokens without touching storage.
func (l *linkIssuer) Resolve(ctx context.Context, token string, purpose domain.LinkPurpose) (string, error) {
	if !linkTokenPattern.MatchString(token) {
		return "", domain.ErrNotFound
	}
	nomineeID, err := l.repo.Resolve(ctx, token, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("resolve link token: %w", err)
	}
	return nomineeID, nil
}
