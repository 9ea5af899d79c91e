package booking

import (
	"fmt"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/facility"

	"github.com/shopspring/decimal"
)

// MissedGrace is how long after start a visit without check-in becomes missed.
const MissedGrace = 15 * time.Minute

// CheckInOpens is how early before start a member may check in.
const CheckInOpens = 15 * time.Minute

type FeeKind string

const (
	FeeCancellation FeeKind = "cancellation_fee"
	FeeReschedule   FeeKind = "reschedule_fee"
	FeeLate         FeeKind = "late_fee"
)

func (k FeeKind) Valid() bool {
	switch k {
	case FeeCancellation, FeeReschedule, FeeLate:
		return true
	}
	return false
}

// ChargeKey is the ledger key of the booking charge for a visit.
func ChargeKey(visitID int) string {
	return fmt.Sprintf("visit:%d:charge", visitID)
}

// FeeKey is the ledger key of a policy fee. Reschedules can be charged more
// than once per visit, so seq (the reschedule number) is part of their key.
func FeeKey(visitID int, kind FeeKind, seq int) string {
	if kind == FeeReschedule {
		return fmt.Sprintf("visit:%d:%s:%d", visitID, kind, seq)
	}
	return fmt.Sprintf("visit:%d:%s", visitID, kind)
}

func RefundKey(feeKey string) string {
	return feeKey + ":refund"
}

// changeFee applies the late-change window to a member-initiated change at
// now on a visit starting at start. At or beyond threshold hours the change
// is free. Inside the window it costs fee, or is refused when the facility
// blocks late changes. Once start has passed nothing may change.
func changeFee(start, now time.Time, thresholdHours int, fee decimal.Decimal, mode facility.LateChange) (decimal.Decimal, error) {
	until := start.Sub(now)
	if until <= 0 {
		return decimal.Zero, ErrAlreadyElapsed
	}
	if until >= time.Duration(thresholdHours)*time.Hour {
		return decimal.Zero, nil
	}
	if mode == facility.LateChangeBlock {
		return decimal.Zero, fmt.Errorf("%w: %s before start, %dh required", ErrPolicyWindowViolation, until.Round(time.Minute), thresholdHours)
	}
	if fee.IsNegative() {
		return decimal.Zero, nil
	}
	return fee, nil
}

type SweepOutcome string

const (
	SweepUntouched SweepOutcome = "untouched"
	SweepCompleted SweepOutcome = "completed"
	SweepMissed    SweepOutcome = "missed"
)

// sweepOutcome decides what a sweep pass at asOf does with a scheduled visit.
// A checked-in visit whose start has passed is completed. One never checked
// in becomes missed once MissedGrace has elapsed. Anything else waits.
func sweepOutcome(v *Visit, start, asOf time.Time) SweepOutcome {
	if v.Status != StatusScheduled || !start.Before(asOf) {
		return SweepUntouched
	}
	if v.CheckedInAt != nil {
		return SweepCompleted
	}
	if asOf.Sub(start) > MissedGrace {
		return SweepMissed
	}
	return SweepUntouched
}

// checkInOpen reports whether now lies in [start-CheckInOpens, start+SlotStep).
func checkInOpen(start, now time.Time) bool {
	return !now.Before(start.Add(-CheckInOpens)) && now.Before(start.Add(facility.SlotStep))
}
