package membership

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string
type PaymentStatus string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"

	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

type Duration string

const (
	DurationDaily      Duration = "Daily"
	DurationWeekly     Duration = "Weekly"
	DurationMonthly    Duration = "Monthly"
	DurationQuarterly  Duration = "Quarterly"
	DurationHalfYearly Duration = "Half-yearly"
	DurationYearly     Duration = "Yearly"
)

type Membership struct {
	ID            int           `db:"id" json:"id"`
	MemberID      int           `db:"member_id" json:"member_id"`
	FacilityID    int           `db:"facility_id" json:"facility_id"`
	PlanID        int           `db:"plan_id" json:"plan_id"`
	StartDate     time.Time     `db:"start_date" json:"start_date"`
	EndDate       time.Time     `db:"end_date" json:"end_date"`
	Status        Status        `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
}

type Plan struct {
	ID         int             `db:"id" json:"id"`
	FacilityID int             `db:"facility_id" json:"facility_id"`
	Tier       string          `db:"tier" json:"tier"`
	Duration   Duration        `db:"duration" json:"duration"`
	Price      decimal.Decimal `db:"price" json:"price"`
}
