package facility

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrFacilityNotFound = errors.New("facility not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetFacility(ctx context.Context, id int) (*Facility, error) {
	query := `
		SELECT id, name, capacity, created_at
		FROM facilities
		WHERE id = $1
	`

	var f Facility
	err := r.db.GetContext(ctx, &f, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// GetOperatingHours prefers the record for date's weekday over the Daily one.
// A facility with neither gets an empty record, which yields no slots.
func (r *repository) GetOperatingHours(ctx context.Context, facilityID int, date time.Time) (*OperatingHours, error) {
	day := DayName(date)
	query := `
		SELECT facility_id, day,
			to_char(morning_open, 'HH24:MI') AS morning_open,
			to_char(morning_close, 'HH24:MI') AS morning_close,
			to_char(evening_open, 'HH24:MI') AS evening_open,
			to_char(evening_close, 'HH24:MI') AS evening_close
		FROM facility_hours
		WHERE facility_id = $1 AND day IN ($2, 'Daily')
		ORDER BY (day = 'Daily') ASC
		LIMIT 1
	`

	var h OperatingHours
	err := r.db.GetContext(ctx, &h, query, facilityID, day)
	if errors.Is(err, sql.ErrNoRows) {
		return &OperatingHours{FacilityID: facilityID, Day: day}, nil
	}
	if err != nil {
		return nil, err
	}

	return &h, nil
}

func (r *repository) GetPolicy(ctx context.Context, facilityID int) (Policy, error) {
	query := `
		SELECT facility_id, cancellation_hours, reschedule_hours,
			cancellation_fee, reschedule_fee, late_fee, late_change
		FROM facility_policies
		WHERE facility_id = $1
	`

	var p Policy
	err := r.db.GetContext(ctx, &p, query, facilityID)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPolicy(facilityID), nil
	}
	if err != nil {
		return Policy{}, err
	}
	if p.LateChange == "" {
		p.LateChange = LateChangeFee
	}

	return p, nil
}
