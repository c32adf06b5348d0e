package sqlrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"nomineetracker/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNomineeRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO nominees \(id, event_id, name, email, employee_id, department, status, created_at, updated_at\)`).
		WithArgs(sqlmock.AnyArg(), "ev-1", "Ada", "ada@x.com", "E-1", "R&D", "Pending", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n := &domain.Nominee{EventID: "ev-1", Name: "Ada", Email: "ada@x.com", EmployeeID: "E-1", Department: "R&D", Status: domain.StatusPending, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewNomineeRepository(db).Create(ctx, n))
	assert.NotEmpty(t, n.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNomineeRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM nominees WHERE id = \$1`).
		WithArgs("nm-x").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewNomineeRepository(db).GetByID(ctx, "nm-x")
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNomineeRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	t0 := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	submitted := time.Date(2025, 2, 2, 12, 0, 0, 0, time.UTC)

	cols := []string{"id", "event_id", "name", "email", "employee_id", "department", "status", "created_at", "updated_at",
		"id", "rating", "comments", "suggestions", "submitted_at"}
	mock.ExpectQuery(`LEFT JOIN feedback f ON f.nominee_id = n.id\s+WHERE n.event_id = \$1\s+ORDER BY n.created_at, n.id`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("nm-1", "ev-1", "Ada", "ada@x.com", "E-1", "R&D", "Attended", t0, t0, "fb-1", int64(5), "Great", "More labs", submitted).
			AddRow("nm-2", "ev-1", "Bob", "bob@x.com", "E-2", "Ops", "Pending", t0, t0, nil, nil, nil, nil, nil))

	list, err := NewNomineeRepository(db).ListByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, domain.StatusAttended, list[0].Status)
	require.NotNil(t, list[0].Feedback)
	assert.Equal(t, &domain.Feedback{ID: "fb-1", NomineeID: "nm-1", Rating: 5, Comments: "Great", Suggestions: "More labs", SubmittedAt: submitted}, list[0].Feedback)

	assert.Equal(t, "nm-2", list[1].ID)
	assert.Nil(t, list[1].Feedback)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNomineeRepository_ListByEventID_Empty(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM nominees n`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, err := NewNomineeRepository(db).ListByEventID(ctx, "ev-1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestNomineeRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "status matched", affected: 1, want: true},
		{name: "lost the race", affected: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec(`UPDATE nominees SET status = \$1, updated_at = \$2 WHERE id = \$3 AND status = \$4`).
				WithArgs("Accepted", at, "nm-1", "Pending").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := NewNomineeRepository(db).UpdateStatus(ctx, "nm-1", domain.StatusPending, domain.StatusAccepted, at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNomineeRepository_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM nominees WHERE id = \$1`).
		WithArgs("nm-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewNomineeRepository(db).Delete(ctx, "nm-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNomineeRepository_CountStatusesByEvent(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT event_id, status, COUNT\(\*\) AS count FROM nominees GROUP BY event_id, status`).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "status", "count"}).
			AddRow("ev-1", "Pending", 2).
			AddRow("ev-1", "Attended", 1).
			AddRow("ev-2", "Rejected", 4))

	counts, err := NewNomineeRepository(db).CountStatusesByEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]map[domain.NomineeStatus]int{
		"ev-1": {domain.StatusPending: 2, domain.StatusAttended: 1},
		"ev-2": {domain.StatusRejected: 4},
	}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}
