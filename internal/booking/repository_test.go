package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/membership"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/occupancy"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/wallet"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var visitCols = []string{
	"id", "member_id", "facility_id", "membership_id", "start_date", "start_time", "end_date",
	"activity_type", "status", "recurrence", "recurrence_until", "days_of_week", "notes",
	"daily_rate", "request_key", "status_reason", "reschedule_count", "checked_in_at",
	"created_at", "updated_at",
}

func visitRow(id int, status string) *sqlmock.Rows {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(visitCols).AddRow(
		id, 10, 1, 3, d, "07:00", d,
		"gym_visit", status, "none", nil, "", "",
		"100.00", "req-1", "", 0, nil,
		now, now,
	)
}

func setupMock(t *testing.T) (Store, sqlmock.Sqlmock) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	conn := sqlx.NewDb(raw, "sqlmock")
	store := NewRepository(conn, membership.NewRepository(conn), wallet.NewRepository(conn), occupancy.NewTracker(conn))
	return store, mock
}

func TestRepository_GetVisit(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectQuery(`FROM visits WHERE id = \$1`).WithArgs(5).WillReturnRows(visitRow(5, "scheduled"))

	v, err := store.GetVisit(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, v.ID)
	assert.Equal(t, StatusScheduled, v.Status)
	assert.Equal(t, ActivityGymVisit, v.ActivityType)
	assert.Equal(t, "07:00", v.StartTime)
	assert.Equal(t, "100.00", v.DailyRate.StringFixed(2))
	assert.Nil(t, v.CheckedInAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetVisit_NotFound(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectQuery(`FROM visits`).WithArgs(9).WillReturnError(sql.ErrNoRows)

	_, err := store.GetVisit(context.Background(), 9)
	assert.ErrorIs(t, err, ErrVisitNotFound)
}

func TestRepository_ListDueVisits(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectQuery(`WHERE status = 'scheduled' AND start_date <= \$1`).
		WithArgs("2024-01-02").
		WillReturnRows(visitRow(5, "scheduled"))

	visits, err := store.ListDueVisits(context.Background(), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, visits, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_WithinTx_RollsBackOnError(t *testing.T) {
	store, mock := setupMock(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE member_id = \$1 AND request_key = \$2`).
		WithArgs(10, "req-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx Tx) error {
		v, err := tx.FindVisitByRequestKey(context.Background(), 10, "req-1")
		require.NoError(t, err)
		assert.Nil(t, v)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertVisit(t *testing.T) {
	store, mock := setupMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO visits`).
		WithArgs(10, 1, 3, "2024-01-02", "07:00", "2024-01-02",
			ActivityGymVisit, StatusScheduled, RecurrenceNone, nil, "", "", decimal.NewFromInt(100), "req-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(77, now, now))
	mock.ExpectCommit()

	v := &Visit{
		MemberID: 10, FacilityID: 1, MembershipID: 3,
		StartDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), StartTime: "07:00",
		EndDate:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		ActivityType: ActivityGymVisit, Status: StatusScheduled, Recurrence: RecurrenceNone,
		DailyRate: decimal.NewFromInt(100), RequestKey: "req-1",
	}
	err := store.WithinTx(context.Background(), func(tx Tx) error {
		return tx.InsertVisit(context.Background(), v)
	})
	require.NoError(t, err)
	assert.Equal(t, 77, v.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertVisit_UniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"one per day", oneScheduledPerDayIndex, ErrDuplicateBookingForDay},
		{"request key", "visits_member_id_request_key_key", errDuplicateRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := setupMock(t)

			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO visits`).
				WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: tt.constraint})
			mock.ExpectRollback()

			err := store.WithinTx(context.Background(), func(tx Tx) error {
				return tx.InsertVisit(context.Background(), &Visit{RequestKey: "k"})
			})
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_UpdateVisit_Missing(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE visits`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(tx Tx) error {
		return tx.UpdateVisit(context.Background(), &Visit{ID: 4, Status: StatusCancelled})
	})
	assert.ErrorIs(t, err, ErrVisitNotFound)
}

func TestRepository_LockVisitAndHasScheduled(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM visits WHERE id = \$1 FOR UPDATE`).WithArgs(5).WillReturnRows(visitRow(5, "scheduled"))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(10, 1, "2024-01-03", 5).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(tx Tx) error {
		v, err := tx.LockVisit(context.Background(), 5)
		if err != nil {
			return err
		}
		dup, err := tx.HasScheduledVisitOnDate(context.Background(), v.MemberID, v.FacilityID,
			time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), v.ID)
		assert.True(t, dup)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ReserveSlotFull(t *testing.T) {
	store, mock := setupMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO slot_occupancy`).
		WithArgs(1, "2024-01-02", "07:00", 2).
		WillReturnRows(sqlmock.NewRows([]string{"current_count"}))
	mock.ExpectCommit()

	var reserved bool
	err := store.WithinTx(context.Background(), func(tx Tx) error {
		var err error
		reserved, err = tx.ReserveSlot(context.Background(),
			occupancy.SlotKey{FacilityID: 1, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Time: "07:00"}, 2)
		return err
	})
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
