package booking

import (
	"errors"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/membership"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/wallet"
)

var (
	ErrSlotUnavailable        = errors.New("slot unavailable")
	ErrEntitlementExhausted   = errors.New("entitlement exhausted")
	ErrMembershipNotEligible  = errors.New("membership not eligible")
	ErrInsufficientFunds      = wallet.ErrInsufficientFunds
	ErrDuplicateBookingForDay = errors.New("member already has a visit scheduled at this facility on this date")
	ErrPolicyWindowViolation  = errors.New("action not allowed this close to the visit")
	ErrAlreadyElapsed         = errors.New("visit start has already passed")
	ErrDataIntegrity          = errors.New("data integrity fault")

	ErrVisitNotFound     = errors.New("visit not found")
	ErrInvalidTransition = errors.New("visit is not scheduled")
	ErrForbidden         = errors.New("visit belongs to another member")
	ErrInvalidRequest    = errors.New("invalid booking request")
	ErrNotRefundable     = errors.New("no such fee to refund")
	ErrCheckInWindow     = errors.New("check-in is not open for this visit")
)

// Reason is the short machine code reported for err, used in manifests and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, ErrEntitlementExhausted):
		return "entitlement_exhausted"
	case errors.Is(err, ErrMembershipNotEligible), errors.Is(err, membership.ErrMembershipNotFound):
		return "membership_not_eligible"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrDuplicateBookingForDay):
		return "duplicate_booking_for_day"
	case errors.Is(err, ErrPolicyWindowViolation):
		return "policy_window_violation"
	case errors.Is(err, ErrAlreadyElapsed):
		return "already_elapsed"
	case errors.Is(err, ErrDataIntegrity):
		return "data_integrity_fault"
	case errors.Is(err, ErrVisitNotFound):
		return "visit_not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrNotRefundable):
		return "not_refundable"
	case errors.Is(err, ErrCheckInWindow):
		return "check_in_window"
	default:
		return "internal"
	}
}
