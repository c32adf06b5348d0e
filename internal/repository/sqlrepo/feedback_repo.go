package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"nomineetracker/internal/domain"
)

type feedbackRepository struct {
	DB *sqlx.DB
}

// NewFeedbackRepository returns a FeedbackRepository backed by db.
func NewFeedbackRepository(db *sqlx.DB) domain.FeedbackRepository {
	return &feedbackRepository{DB: db}
}

type feedbackRow struct {
	ID          string    `db:"id"`
	NomineeID   string    `db:"nominee_id"`
	Rating      int       `db:"rating"`
	Comments    string    `db:"comments"`
	Suggestions string    `db:"suggestions"`
	SubmittedAt time.Time `db:"submitted_at"`
}

func (r feedbackRow) toDomain() domain.Feedback {
	return domain.Feedback{
		ID:          r.ID,
		NomineeID:   r.NomineeID,
		Rating:      r.Rating,
		Comments:    r.Comments,
		Suggestions: r.Suggestions,
		SubmittedAt: r.SubmittedAt,
	}
}

type feedbackEntryRow struct {
	ID                string    `db:"id"`
	NomineeID         string    `db:"nominee_id"`
	Rating            int       `db:"rating"`
	Comments          string    `db:"comments"`
	Suggestions       string    `db:"suggestions"`
	SubmittedAt       time.Time `db:"submitted_at"`
	NomineeName       string    `db:"nominee_name"`
	NomineeEmail      string    `db:"nominee_email"`
	NomineeDepartment string    `db:"nominee_department"`
}

func (r feedbackEntryRow) feedback() feedbackRow {
	return feedbackRow{
		ID:          r.ID,
		NomineeID:   r.NomineeID,
		Rating:      r.Rating,
		Comments:    r.Comments,
		Suggestions: r.Suggestions,
		SubmittedAt: r.SubmittedAt,
	}
}

// Create inserts f. The unique index on nominee_id turns a concurrent second
// submission into ErrAlreadySubmitted.
func (r *feedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	if f.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		f.ID = id
	}
	query := r.DB.Rebind(`
		INSERT INTO feedback (id, nominee_id, rating, comments, suggestions, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := r.DB.ExecContext(ctx, query, f.ID, f.NomineeID, f.Rating, f.Comments, f.Suggestions, f.SubmittedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadySubmitted
		}
		return err
	}
	return nil
}

func (r *feedbackRepository) GetByNomineeID(ctx context.Context, nomineeID string) (*domain.Feedback, error) {
	var row feedbackRow
	query := r.DB.Rebind(`
		SELECT id, nominee_id, rating, comments, suggestions, submitted_at
		FROM feedback WHERE nominee_id = ?
	`)
	if err := r.DB.GetContext(ctx, &row, query, nomineeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	f := row.toDomain()
	return &f, nil
}

func (r *feedbackRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.FeedbackEntry, error) {
	var rows []feedbackEntryRow
	query := r.DB.Rebind(`
		SELECT f.id, f.nominee_id, f.rating, f.comments, f.suggestions, f.submitted_at,
		       n.name AS nominee_name, n.email AS nominee_email, n.department AS nominee_department
		FROM feedback f
		JOIN nominees n ON n.id = f.nominee_id
		WHERE n.event_id = ?
		ORDER BY n.created_at, n.id
	`)
	if err := r.DB.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, err
	}
	entries := make([]*domain.FeedbackEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &domain.FeedbackEntry{
			Feedback:          row.feedback().toDomain(),
			NomineeName:       row.NomineeName,
			NomineeEmail:      row.NomineeEmail,
			NomineeDepartment: row.NomineeDepartment,
		})
	}
	return entries, nil
}
