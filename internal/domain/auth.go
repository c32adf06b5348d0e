package domain

import "time"

// RoleAdmin is the role an admin token must carry.
const RoleAdmin = "admin"

// TokenIssuer issues tokens (e.g. JWT) for an operator.
type TokenIssuer interface {
	Issue(subject, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies an admin token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}
