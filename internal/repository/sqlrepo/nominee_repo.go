package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"nomineetracker/internal/domain"
)

type nomineeRepository struct {
	DB *sqlx.DB
}

// NewNomineeRepository returns a NomineeRepository backed by db.
func NewNomineeRepository(db *sqlx.DB) domain.NomineeRepository {
	return &nomineeRepository{DB: db}
}

type nomineeRow struct {
	ID         string    `db:"id"`
	EventID    string    `db:"event_id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	EmployeeID string    `db:"employee_id"`
	Department string    `db:"department"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r nomineeRow) toDomain() *domain.Nominee {
	return &domain.Nominee{
		ID:         r.ID,
		EventID:    r.EventID,
		Name:       r.Name,
		Email:      r.Email,
		EmployeeID: r.EmployeeID,
		Department: r.Department,
		Status:     domain.NomineeStatus(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r *nomineeRepository) Create(ctx context.Context, n *domain.Nominee) error {
	if n.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		n.ID = id
	}
	query := r.DB.Rebind(`
		INSERT INTO nominees (id, event_id, name, email, employee_id, department, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.DB.ExecContext(ctx, query,
		n.ID, n.EventID, n.Name, n.Email, n.EmployeeID, n.Department, string(n.Status), n.CreatedAt, n.UpdatedAt)
	return err
}

func (r *nomineeRepository) GetByID(ctx context.Context, id string) (*domain.Nominee, error) {
	var row nomineeRow
	query := r.DB.Rebind(`
		SELECT id, event_id, name, email, employee_id, department, status, created_at, updated_at
		FROM nominees WHERE id = ?
	`)
	if err := r.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *nomineeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Nominee, error) {
	query := r.DB.Rebind(`
		SELECT n.id, n.event_id, n.name, n.email, n.employee_id, n.department, n.status, n.created_at, n.updated_at,
		       f.id, f.rating, f.comments, f.suggestions, f.submitted_at
		FROM nominees n
		LEFT JOIN feedback f ON f.nominee_id = n.id
		WHERE n.event_id = ?
		ORDER BY n.created_at, n.id
	`)
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Nominee
	for rows.Next() {
		var (
			row         nomineeRow
			fbID        sql.NullString
			rating      sql.NullInt64
			comments    sql.NullString
			suggestions sql.NullString
			submittedAt sql.NullTime
		)
		if err := rows.Scan(&row.ID, &row.EventID, &row.Name, &row.Email, &row.EmployeeID, &row.Department,
			&row.Status, &row.CreatedAt, &row.UpdatedAt,
			&fbID, &rating, &comments, &suggestions, &submittedAt); err != nil {
			return nil, err
		}
		n := row.toDomain()
		if fbID.Valid {
			n.Feedback = &domain.Feedback{
				ID:          fbID.String,
				NomineeID:   n.ID,
				Rating:      int(rating.Int64),
				Comments:    comments.String,
				Suggestions: suggestions.String,
				SubmittedAt: submittedAt.Time,
			}
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Nominee{}
	}
	return list, nil
}

// UpdateStatus is a compare-and-set on status; it reports false when another
// writer moved the nominee first or the nominee no longer exists.
func (r *nomineeRepository) UpdateStatus(ctx context.Context, id string, from, to domain.NomineeStatus, at time.Time) (bool, error) {
	query := r.DB.Rebind(`UPDATE nominees SET status = ?, updated_at = ? WHERE id = ? AND status = ?`)
	res, err := r.DB.ExecContext(ctx, query, string(to), at, id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *nomineeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM nominees WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *nomineeRepository) CountStatusesByEvent(ctx context.Context) (map[string]map[domain.NomineeStatus]int, error) {
	var rows []struct {
		EventID string `db:"event_id"`
		Status  string `db:"status"`
		Count   int    `db:"count"`
	}
	query := `SELECT event_id, status, COUNT(*) AS count FROM nominees GROUP BY event_id, status`
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	out := make(map[string]map[domain.NomineeStatus]int)
	for _, row := range rows {
		byStatus, ok := out[row.EventID]
		if !ok {
			byStatus = make(map[domain.NomineeStatus]int, 4)
			out[row.EventID] = byStatus
		}
		byStatus[domain.NomineeStatus(row.Status)] = row.Count
	}
	return out, nil
}
