package occupancy

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SlotKey identifies one bookable hour. Time is "HH:MM".
type SlotKey struct {
	FacilityID int
	Date       time.Time
	Time       string
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.FacilityID, k.Date.Format(time.DateOnly), k.Time)
}

type Tracker struct {
	db *sqlx.DB
}

func NewTracker(db *sqlx.DB) *Tracker {
	return &Tracker{db: db}
}

// ReserveTx takes one place in the slot if fewer than capacity are taken.
// The check and increment are a single statement, so two transactions can
// never both take the last place. Returns false when the slot is full.
func (t *Tracker) ReserveTx(ctx context.Context, q sqlx.QueryerContext, key SlotKey, capacity int) (bool, error) {
	if capacity <= 0 {
		return false, nil
	}

	rows, err := q.QueryContext(ctx, `
		INSERT INTO slot_occupancy (facility_id, slot_date, slot_time, current_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (facility_id, slot_date, slot_time) DO UPDATE
		SET current_count = slot_occupancy.current_count + 1
		WHERE slot_occupancy.current_count < $4
		RETURNING current_count
	`, key.FacilityID, key.Date.Format(time.DateOnly), key.Time, capacity)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	reserved := rows.Next()
	if err := rows.Err(); err != nil {
		return false, err
	}
	return reserved, nil
}

// ReleaseTx gives a place back. The counter never drops below zero.
func (t *Tracker) ReleaseTx(ctx context.Context, e sqlx.ExecerContext, key SlotKey) error {
	_, err := e.ExecContext(ctx, `
		UPDATE slot_occupancy
		SET current_count = current_count - 1
		WHERE facility_id = $1 AND slot_date = $2 AND slot_time = $3 AND current_count > 0
	`, key.FacilityID, key.Date.Format(time.DateOnly), key.Time)
	return err
}

func (t *Tracker) Count(ctx context.Context, key SlotKey) (int, error) {
	var count int
	err := t.db.GetContext(ctx, &count, `
		SELECT COALESCE(MAX(current_count), 0)
		FROM slot_occupancy
		WHERE facility_id = $1 AND slot_date = $2 AND slot_time = $3
	`, key.FacilityID, key.Date.Format(time.DateOnly), key.Time)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountsForDate returns current_count per "HH:MM" for every slot of the day
// that has ever been reserved.
func (t *Tracker) CountsForDate(ctx context.Context, facilityID int, date time.Time) (map[string]int, error) {
	var rows []struct {
		Time  string `db:"slot_time"`
		Count int    `db:"current_count"`
	}
	err := t.db.SelectContext(ctx, &rows, `
		SELECT to_char(slot_time, 'HH24:MI') AS slot_time, current_count
		FROM slot_occupancy
		WHERE facility_id = $1 AND slot_date = $2
	`, facilityID, date.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Time] = r.Count
	}
	return counts, nil
}
