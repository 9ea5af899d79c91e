package membership

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownDuration = errors.New("unknown plan duration")
	ErrPlanMissing     = errors.New("plan missing for membership")
)

type Reason string

const (
	ReasonOK          Reason = "ok"
	ReasonNotEligible Reason = "not_eligible"
	ReasonExhausted   Reason = "exhausted"
)

// DurationDays maps a plan duration to the day count its price is spread over.
func DurationDays(d Duration) (int, error) {
	switch d {
	case DurationDaily:
		return 1, nil
	case DurationWeekly:
		return 7, nil
	case DurationMonthly:
		return 30, nil
	case DurationQuarterly:
		return 90, nil
	case DurationHalfYearly:
		return 180, nil
	case DurationYearly:
		return 365, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDuration, d)
	}
}

// DailyRate is price / DurationDays, floored to two decimals.
func DailyRate(p *Plan) (decimal.Decimal, error) {
	days, err := DurationDays(p.Duration)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Price.Div(decimal.NewFromInt(int64(days))).RoundFloor(2), nil
}

// VisitCost is what one visit-day costs under the plan: the full price for
// Daily passes, the daily rate otherwise.
func VisitCost(p *Plan) (decimal.Decimal, error) {
	if p.Duration == DurationDaily {
		return p.Price, nil
	}
	return DailyRate(p)
}

type Snapshot struct {
	MembershipID    int  `json:"membership_id"`
	TotalDayCredits *int `json:"total_day_credits"`
	UsedDayCredits  int  `json:"used_day_credits"`
}

func (s Snapshot) Remaining() *int {
	if s.TotalDayCredits == nil {
		return nil
	}
	left := *s.TotalDayCredits - s.UsedDayCredits
	if left < 0 {
		left = 0
	}
	return &left
}

// NewSnapshot derives the entitlement of m. Only Daily plans carry a credit total.
func NewSnapshot(m *Membership, p *Plan, used int) (Snapshot, error) {
	if p == nil || p.ID != m.PlanID {
		return Snapshot{}, fmt.Errorf("%w: membership %d", ErrPlanMissing, m.ID)
	}
	if _, err := DurationDays(p.Duration); err != nil {
		return Snapshot{}, err
	}

	s := Snapshot{MembershipID: m.ID, UsedDayCredits: used}
	if p.Duration == DurationDaily {
		total := daysBetween(m.StartDate, m.EndDate) + 1
		s.TotalDayCredits = &total
	}
	return s, nil
}

type Decision struct {
	Allowed  bool            `json:"allowed"`
	Reason   Reason          `json:"reason"`
	Detail   string          `json:"detail,omitempty"`
	Cost     decimal.Decimal `json:"cost"`
	Snapshot Snapshot        `json:"snapshot"`
}

// Evaluate decides whether m can pay for one visit at facilityID on date,
// given used visits already recorded against it. Ineligibility is reported
// in the Decision; an error means the membership or plan data is broken.
func Evaluate(m *Membership, p *Plan, facilityID int, date time.Time, used int) (Decision, error) {
	snap, err := NewSnapshot(m, p, used)
	if err != nil {
		return Decision{}, err
	}

	deny := func(r Reason, detail string) (Decision, error) {
		return Decision{Reason: r, Detail: detail, Snapshot: snap}, nil
	}

	switch {
	case m.FacilityID != facilityID:
		return deny(ReasonNotEligible, "membership belongs to another facility")
	case m.Status != StatusActive:
		return deny(ReasonNotEligible, "membership is "+string(m.Status))
	case m.PaymentStatus != PaymentPaid:
		return deny(ReasonNotEligible, "membership payment is "+string(m.PaymentStatus))
	case !Covers(m, date):
		return deny(ReasonNotEligible, "date outside membership period")
	}

	if snap.TotalDayCredits != nil && used >= *snap.TotalDayCredits {
		return deny(ReasonExhausted, fmt.Sprintf("all %d day credits used", *snap.TotalDayCredits))
	}

	cost, err := VisitCost(p)
	if err != nil {
		return Decision{}, err
	}

	return Decision{Allowed: true, Reason: ReasonOK, Cost: cost, Snapshot: snap}, nil
}

// Covers reports whether date falls within [StartDate, EndDate], compared as calendar days.
func Covers(m *Membership, date time.Time) bool {
	d := civil(date)
	return !d.Before(civil(m.StartDate)) && !d.After(civil(m.EndDate))
}

func civil(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}
