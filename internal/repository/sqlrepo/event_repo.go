package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"nomineetracker/internal/domain"
)

type eventRepository struct {
	DB *sqlx.DB
}

// NewEventRepository returns an EventRepository backed by db.
func NewEventRepository(db *sqlx.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

type eventRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	EventDate   string    `db:"event_date"`
	EventTime   string    `db:"event_time"`
	Venue       string    `db:"venue"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r eventRow) toDomain() *domain.Event {
	return &domain.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.EventDate,
		Time:        r.EventTime,
		Venue:       r.Venue,
		CreatedAt:   r.CreatedAt,
	}
}

const eventColumns = `id, title, description, event_date, event_time, venue, created_at`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if e.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		e.ID = id
	}
	query := r.DB.Rebind(`
		INSERT INTO events (id, title, description, event_date, event_time, venue, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.DB.ExecContext(ctx, query, e.ID, e.Title, e.Description, e.Date, e.Time, e.Venue, e.CreatedAt)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var row eventRow
	query := r.DB.Rebind(`SELECT ` + eventColumns + ` FROM events WHERE id = ?`)
	if err := r.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// List returns all events, newest first.
func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	var rows []eventRow
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC, id DESC`
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	events := make([]*domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toDomain())
	}
	return events, nil
}

// Delete removes the event; nominees, feedback and link tokens go with it via ON DELETE CASCADE.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM events WHERE id = ?`), id)
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
