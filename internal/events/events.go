package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routing keys on the booking exchange.
const (
	BookingCreated     = "booking.created"
	BookingCancelled   = "booking.cancelled"
	BookingRescheduled = "booking.rescheduled"
	VisitCompleted     = "visit.completed"
	VisitMissed        = "visit.missed"
	VisitCheckedIn     = "visit.checked_in"
	FeeRefunded        = "fee.refunded"
)

type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	VisitID    int             `json:"visit_id"`
	MemberID   int             `json:"member_id"`
	FacilityID int             `json:"facility_id"`
	Date       string          `json:"date,omitempty"`
	Time       string          `json:"time,omitempty"`
	Fee        decimal.Decimal `json:"fee"`
}

func New(typ string, at time.Time) Event {
	return Event{ID: uuid.NewString(), Type: typ, OccurredAt: at.UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
