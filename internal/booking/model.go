package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/wallet"

	"github.com/shopspring/decimal"
)

type ActivityType string

const (
	ActivityGymVisit         ActivityType = "gym_visit"
	ActivityClass            ActivityType = "class"
	ActivityPersonalTraining ActivityType = "personal_training"
)

func (a ActivityType) Valid() bool {
	switch a {
	case ActivityGymVisit, ActivityClass, ActivityPersonalTraining:
		return true
	}
	return false
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusMissed    Status = "missed"
)

func (s Status) Terminal() bool {
	return s != StatusScheduled
}

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Weekdays is stored as a comma separated list of weekday names.
type Weekdays []time.Weekday

func (w Weekdays) String() string {
	names := make([]string, len(w))
	for i, d := range w {
		names[i] = d.String()
	}
	return strings.Join(names, ",")
}

func (w Weekdays) Contains(d time.Weekday) bool {
	for _, x := range w {
		if x == d {
			return true
		}
	}
	return false
}

func ParseWeekdays(names []string) (Weekdays, error) {
	out := make(Weekdays, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		d, ok := weekdayByName[strings.ToLower(n)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidRequest, n)
		}
		if !out.Contains(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

var weekdayByName = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

type Visit struct {
	ID              int             `db:"id" json:"id"`
	MemberID        int             `db:"member_id" json:"member_id"`
	FacilityID      int             `db:"facility_id" json:"facility_id"`
	MembershipID    int             `db:"membership_id" json:"membership_id"`
	StartDate       time.Time       `db:"start_date" json:"start_date"`
	StartTime       string          `db:"start_time" json:"start_time"`
	EndDate         time.Time       `db:"end_date" json:"end_date"`
	ActivityType    ActivityType    `db:"activity_type" json:"activity_type"`
	Status          Status          `db:"status" json:"status"`
	Recurrence      Recurrence      `db:"recurrence" json:"recurrence"`
	RecurrenceUntil *time.Time      `db:"recurrence_until" json:"recurrence_until,omitempty"`
	DaysOfWeek      string          `db:"days_of_week" json:"days_of_week,omitempty"`
	Notes           string          `db:"notes" json:"notes,omitempty"`
	DailyRate       decimal.Decimal `db:"daily_rate" json:"daily_rate"`
	RequestKey      string          `db:"request_key" json:"request_key"`
	StatusReason    string          `db:"status_reason" json:"status_reason,omitempty"`
	RescheduleCount int             `db:"reschedule_count" json:"reschedule_count"`
	CheckedInAt     *time.Time      `db:"checked_in_at" json:"checked_in_at,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// CreateRequest books a single visit.
type CreateRequest struct {
	MemberID     int          `json:"-"`
	MembershipID int          `json:"membership_id" validate:"required,gt=0"`
	FacilityID   int          `json:"facility_id" validate:"required,gt=0"`
	Date         string       `json:"date" validate:"required,datetime=2006-01-02" example:"2024-03-12"`
	Time         string       `json:"time" validate:"required,datetime=15:04" example:"07:00"`
	ActivityType ActivityType `json:"activity_type" validate:"omitempty,oneof=gym_visit class personal_training"`
	Notes        string       `json:"notes" validate:"max=500"`
	// RequestKey makes the request safe to retry. Generated when empty.
	RequestKey string `json:"request_key" validate:"max=128"`
}

type RecurringRequest struct {
	CreateRequest
	Recurrence Recurrence `json:"recurrence" validate:"required,oneof=none daily weekly monthly"`
	Until      string     `json:"recurring_until" validate:"omitempty,datetime=2006-01-02" example:"2024-04-30"`
	DaysOfWeek []string   `json:"days_of_week"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type RescheduleRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02" example:"2024-03-14"`
	Time   string `json:"time" validate:"required,datetime=15:04" example:"18:00"`
	Reason string `json:"reason" validate:"max=500"`
}

type RefundRequest struct {
	Kind FeeKind `json:"kind" validate:"required,oneof=cancellation_fee reschedule_fee late_fee"`
	// Seq picks which reschedule fee to refund. Ignored for other kinds.
	Seq int `json:"seq" validate:"gte=0"`
}

type SlotAvailability struct {
	Time           string `json:"time" example:"07:00"`
	AvailableCount int    `json:"available_count" example:"12"`
}

type ManifestEntry struct {
	Date    string `json:"date" example:"2024-03-12"`
	VisitID *int   `json:"visit_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Reason  string `json:"reason,omitempty" example:"slot_unavailable"`
}

type CreateBookingResponse struct {
	VisitID int    `json:"visit_id"`
	Visit   *Visit `json:"visit"`
}

type RecurringBookingResponse struct {
	Manifest []ManifestEntry `json:"manifest"`
}

type CancelBookingResponse struct {
	FeeCharged decimal.Decimal `json:"fee_charged"`
}

type RescheduleBookingResponse struct {
	FeeCharged decimal.Decimal `json:"fee_charged"`
	Visit      *Visit          `json:"visit"`
}

type RefundResponse struct {
	Transaction *wallet.Transaction `json:"transaction"`
}
