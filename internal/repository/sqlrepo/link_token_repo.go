package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"nomineetracker/internal/domain"
)

type linkTokenRepository struct {
	DB *sqlx.DB
}

// NewLinkTokenRepository returns a LinkTokenRepository backed by db.
func NewLinkTokenRepository(db *sqlx.DB) domain.LinkTokenRepository {
	return &linkTokenRepository{DB: db}
}

type linkTokenRow struct {
	Token     string    `db:"token"`
	NomineeID string    `db:"nominee_id"`
	Purpose   string    `db:"purpose"`
	CreatedAt time.Time `db:"created_at"`
}

// GetOrCreate inserts t unless (nominee_id, purpose) already has a token, then
// returns the stored row. Concurrent issuers for the same nominee converge on one token.
func (r *linkTokenRepository) GetOrCreate(ctx context.Context, t *domain.LinkToken) (*domain.LinkToken, error) {
	insert := r.DB.Rebind(`
		INSERT INTO link_tokens (token, nominee_id, purpose, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (nominee_id, purpose) DO NOTHING
	`)
	if _, err := r.DB.ExecContext(ctx, insert, t.Token, t.NomineeID, string(t.Purpose), t.CreatedAt); err != nil {
		return nil, err
	}

	var row linkTokenRow
	query := r.DB.Rebind(`
		SELECT token, nominee_id, purpose, created_at
		FROM link_tokens WHERE nominee_id = ? AND purpose = ?
	`)
	if err := r.DB.GetContext(ctx, &row, query, t.NomineeID, string(t.Purpose)); err != nil {
		return nil, err
	}
	return &domain.LinkToken{
		Token:     row.Token,
		NomineeID: row.NomineeID,
		Purpose:   domain.LinkPurpose(row.Purpose),
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *linkTokenRepository) Resolve(ctx context.Context, token string, purpose domain.LinkPurpose) (string, error) {
	var nomineeID string
	query := r.DB.Rebind(`SELECT nominee_id FROM link_tokens WHERE token = ? AND purpose = ?`)
	if err := r.DB.GetContext(ctx, &nomineeID, query, token, string(purpose)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return nomineeID, nil
}
