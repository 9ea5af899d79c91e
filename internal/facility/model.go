package facility

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCapacity = 50

// DayDaily is the operating-hours record that applies to every weekday.
const DayDaily = "Daily"

type Facility struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  *int      `db:"capacity" json:"capacity,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EffectiveCapacity returns the per-slot ceiling, falling back to DefaultCapacity when unset.
func (f *Facility) EffectiveCapacity() int {
	if f.Capacity == nil || *f.Capacity <= 0 {
		return DefaultCapacity
	}
	return *f.Capacity
}

// OperatingHours holds the two daily windows as "HH:MM" strings. A nil or
// "closed" bound closes that window.
type OperatingHours struct {
	FacilityID   int     `db:"facility_id" json:"facility_id"`
	Day          string  `db:"day" json:"day"`
	MorningOpen  *string `db:"morning_open" json:"morning_open,omitempty"`
	MorningClose *string `db:"morning_close" json:"morning_close,omitempty"`
	EveningOpen  *string `db:"evening_open" json:"evening_open,omitempty"`
	EveningClose *string `db:"evening_close" json:"evening_close,omitempty"`
}

type LateChange string

const (
	// LateChangeFee allows a late cancel/reschedule and charges the policy fee.
	LateChangeFee LateChange = "fee"
	// LateChangeBlock rejects a late cancel/reschedule outright.
	LateChangeBlock LateChange = "block"
)

type Policy struct {
	FacilityID        int             `db:"facility_id" json:"facility_id"`
	CancellationHours int             `db:"cancellation_hours" json:"cancellation_hours"`
	RescheduleHours   int             `db:"reschedule_hours" json:"reschedule_hours"`
	CancellationFee   decimal.Decimal `db:"cancellation_fee" json:"cancellation_fee"`
	RescheduleFee     decimal.Decimal `db:"reschedule_fee" json:"reschedule_fee"`
	LateFee           decimal.Decimal `db:"late_fee" json:"late_fee"`
	LateChange        LateChange      `db:"late_change" json:"late_change"`
}

func DefaultPolicy(facilityID int) Policy {
	return Policy{
		FacilityID:        facilityID,
		CancellationHours: 4,
		RescheduleHours:   2,
		CancellationFee:   decimal.NewFromInt(200),
		RescheduleFee:     decimal.NewFromInt(100),
		LateFee:           decimal.NewFromInt(300),
		LateChange:        LateChangeFee,
	}
}

type Slot struct {
	Date  time.Time `json:"date"`
	Time  string    `json:"time"`
	Start time.Time `json:"start"`
}
