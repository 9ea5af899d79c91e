package facility

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestGetFacility(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, name, capacity, created_at FROM facilities WHERE id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity", "created_at"}).
			AddRow(1, "Iron Temple", nil, time.Now()))

	f, err := repo.GetFacility(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Iron Temple", f.Name)
	assert.Equal(t, DefaultCapacity, f.EffectiveCapacity())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFacility_NotFound(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, name, capacity, created_at FROM facilities`).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetFacility(context.Background(), 9)
	assert.ErrorIs(t, err, ErrFacilityNotFound)
}

func TestGetOperatingHours(t *testing.T) {
	repo, mock := setupMock(t)
	date := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT facility_id, day,.*FROM facility_hours.*WHERE facility_id = \$1 AND day IN \(\$2, 'Daily'\)`).
		WithArgs(1, "Tuesday").
		WillReturnRows(sqlmock.NewRows([]string{"facility_id", "day", "morning_open", "morning_close", "evening_open", "evening_close"}).
			AddRow(1, "Daily", "06:00", "10:00", nil, nil))

	h, err := repo.GetOperatingHours(context.Background(), 1, date)
	require.NoError(t, err)
	assert.Equal(t, "Daily", h.Day)
	require.NotNil(t, h.MorningOpen)
	assert.Equal(t, "06:00", *h.MorningOpen)
	assert.Nil(t, h.EveningOpen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOperatingHours_None(t *testing.T) {
	repo, mock := setupMock(t)
	date := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM facility_hours`).
		WithArgs(1, "Tuesday").
		WillReturnError(sql.ErrNoRows)

	h, err := repo.GetOperatingHours(context.Background(), 1, date)
	require.NoError(t, err)

	count := 0
	for range Slots(h, date, date.AddDate(0, 0, -1)) {
		count++
	}
	assert.Zero(t, count)
}

func TestGetPolicy(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`FROM facility_policies WHERE facility_id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"facility_id", "cancellation_hours", "reschedule_hours", "cancellation_fee", "reschedule_fee", "late_fee", "late_change"}).
			AddRow(2, 6, 3, "150.00", "50.00", "0.00", "block"))

	p, err := repo.GetPolicy(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 6, p.CancellationHours)
	assert.True(t, p.CancellationFee.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, LateChangeBlock, p.LateChange)
}

func TestGetPolicy_Defaults(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`FROM facility_policies`).
		WithArgs(3).
		WillReturnError(sql.ErrNoRows)

	p, err := repo.GetPolicy(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(3), p)
	assert.Equal(t, 4, p.CancellationHours)
	assert.Equal(t, 2, p.RescheduleHours)
	assert.True(t, p.LateFee.Equal(decimal.NewFromInt(300)))
}
