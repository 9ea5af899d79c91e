package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/clock"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/events"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/facility"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/logger"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/membership"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/metrics"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/occupancy"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/wallet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const publishTimeout = 2 * time.Second

type Service interface {
	CreateBooking(ctx context.Context, req CreateRequest) (*Visit, error)
	CreateRecurringBooking(ctx context.Context, req RecurringRequest) ([]ManifestEntry, error)
	CancelBooking(ctx context.Context, memberID, visitID int, reason string) (decimal.Decimal, error)
	RescheduleBooking(ctx context.Context, memberID, visitID int, req RescheduleRequest) (*Visit, decimal.Decimal, error)
	CheckIn(ctx context.Context, memberID, visitID int) (*Visit, error)
	GetAvailableSlots(ctx context.Context, facilityID int, date time.Time) ([]SlotAvailability, error)
	ListMemberVisits(ctx context.Context, memberID int) ([]Visit, error)
	RefundFee(ctx context.Context, visitID int, kind FeeKind, seq int) (*wallet.Transaction, error)
	DueVisits(ctx context.Context, asOf time.Time) ([]Visit, error)
	SweepVisit(ctx context.Context, visitID int, asOf time.Time) (SweepOutcome, decimal.Decimal, error)
}

// SlotCache stores computed availability per facility and day.
type SlotCache interface {
	Get(ctx context.Context, facilityID int, date time.Time, dst any) (bool, error)
	Set(ctx context.Context, facilityID int, date time.Time, v any) error
	Invalidate(ctx context.Context, facilityID int, dates ...time.Time) error
}

type service struct {
	store      Store
	facilities facility.Repository
	clock      clock.Clock
	loc        *time.Location
	publisher  events.Publisher
	cache      SlotCache
	tracer     trace.Tracer
}

type Option func(*service)

// WithLocation sets the facility time zone used for civil dates. Default UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *service) { s.loc = loc }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

func WithSlotCache(c SlotCache) Option {
	return func(s *service) { s.cache = c }
}

func NewService(store Store, facilities facility.Repository, clk clock.Clock, opts ...Option) Service {
	s := &service{
		store:      store,
		facilities: facilities,
		clock:      clk,
		loc:        time.UTC,
		publisher:  events.Nop{},
		cache:      noCache{},
		tracer:     otel.Tracer("featuresgym/booking"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// series carries the recurrence fields stamped on every visit of a batch.
type series struct {
	kind  Recurrence
	until *time.Time
	days  string
}

func (s *service) CreateBooking(ctx context.Context, req CreateRequest) (*Visit, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Create", trace.WithAttributes(
		attribute.Int("member.id", req.MemberID),
		attribute.Int("facility.id", req.FacilityID),
	))
	defer span.End()

	date, slot, err := s.parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, s.fail(span, "create", err)
	}
	if req.RequestKey == "" {
		req.RequestKey = uuid.NewString()
	}

	v, err := s.create(ctx, req, date, slot, series{kind: RecurrenceNone})
	if err != nil {
		return nil, s.fail(span, "create", err)
	}
	span.SetAttributes(attribute.Int("visit.id", v.ID))
	return v, nil
}

func (s *service) CreateRecurringBooking(ctx context.Context, req RecurringRequest) ([]ManifestEntry, error) {
	ctx, span := s.tracer.Start(ctx, "booking.CreateRecurring", trace.WithAttributes(
		attribute.Int("member.id", req.MemberID),
		attribute.String("recurrence", string(req.Recurrence)),
	))
	defer span.End()

	start, slot, err := s.parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, s.fail(span, "create_recurring", err)
	}

	var until time.Time
	if req.Until != "" {
		until, err = time.ParseInLocation(time.DateOnly, req.Until, s.loc)
		if err != nil {
			return nil, s.fail(span, "create_recurring", fmt.Errorf("%w: recurring_until: %v", ErrInvalidRequest, err))
		}
	}

	days, err := ParseWeekdays(req.DaysOfWeek)
	if err != nil {
		return nil, s.fail(span, "create_recurring", err)
	}

	pattern, err := NewPattern(req.Recurrence, start, until, days)
	if err != nil {
		return nil, s.fail(span, "create_recurring", err)
	}

	base := req.RequestKey
	if base == "" {
		base = uuid.NewString()
	}
	info := series{kind: pattern.Kind, days: pattern.Days.String()}
	if pattern.Kind != RecurrenceNone {
		u := pattern.Until
		info.until = &u
	}

	manifest := []ManifestEntry{}
	for date := range pattern.Dates() {
		one := req.CreateRequest
		one.Date = date.Format(time.DateOnly)
		one.RequestKey = base + ":" + one.Date

		entry := ManifestEntry{Date: one.Date}
		v, err := s.create(ctx, one, date, slot, info)
		if err != nil {
			s.logFailure("create_recurring", err)
			entry.Error = err.Error()
			entry.Reason = Reason(err)
		} else {
			id := v.ID
			entry.VisitID = &id
		}
		manifest = append(manifest, entry)
	}

	span.SetAttributes(attribute.Int("manifest.size", len(manifest)))
	return manifest, nil
}

// create books one visit in its own unit of work. A request key seen before
// returns the visit it created the first time.
func (s *service) create(ctx context.Context, req CreateRequest, date time.Time, slot string, info series) (*Visit, error) {
	activity := req.ActivityType
	if activity == "" {
		activity = ActivityGymVisit
	}
	if !activity.Valid() {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrInvalidRequest, activity)
	}

	now := s.clock.Now()
	var (
		visit    *Visit
		replayed bool
		cost     decimal.Decimal
	)

	err := s.store.WithinTx(ctx, func(tx Tx) error {
		existing, err := tx.FindVisitByRequestKey(ctx, req.MemberID, req.RequestKey)
		if err != nil {
			return err
		}
		if existing != nil {
			visit, replayed = existing, true
			return nil
		}

		m, p, err := tx.LockMembership(ctx, req.MembershipID)
		if err != nil {
			return membershipError(err)
		}
		if m.MemberID != req.MemberID {
			return fmt.Errorf("%w: membership %d belongs to another member", ErrMembershipNotEligible, m.ID)
		}

		used, err := tx.CountMembershipVisits(ctx, m.ID)
		if err != nil {
			return err
		}

		decision, err := membership.Evaluate(m, p, req.FacilityID, date, used)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDataIntegrity, err)
		}
		if !decision.Allowed {
			if decision.Reason == membership.ReasonExhausted {
				return fmt.Errorf("%w: %s", ErrEntitlementExhausted, decision.Detail)
			}
			return fmt.Errorf("%w: %s", ErrMembershipNotEligible, decision.Detail)
		}

		f, err := s.facilities.GetFacility(ctx, req.FacilityID)
		if err != nil {
			return facilityError(err)
		}
		hours, err := s.facilities.GetOperatingHours(ctx, f.ID, date)
		if err != nil {
			return err
		}
		if !facility.HasSlot(hours, date, slot, now) {
			return fmt.Errorf("%w: %s %s is not a bookable slot", ErrSlotUnavailable, date.Format(time.DateOnly), slot)
		}

		dup, err := tx.HasScheduledVisitOnDate(ctx, req.MemberID, f.ID, date, 0)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateBookingForDay
		}

		key := occupancy.SlotKey{FacilityID: f.ID, Date: date, Time: slot}
		ok, err := tx.ReserveSlot(ctx, key, f.EffectiveCapacity())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s is full", ErrSlotUnavailable, key)
		}

		v := &Visit{
			MemberID:        req.MemberID,
			FacilityID:      f.ID,
			MembershipID:    m.ID,
			StartDate:       date,
			StartTime:       slot,
			EndDate:         date,
			ActivityType:    activity,
			Status:          StatusScheduled,
			Recurrence:      info.kind,
			RecurrenceUntil: info.until,
			DaysOfWeek:      info.days,
			Notes:           req.Notes,
			DailyRate:       decision.Cost,
			RequestKey:      req.RequestKey,
		}
		if err := tx.InsertVisit(ctx, v); err != nil {
			return err
		}

		if decision.Cost.IsPositive() {
			_, err := tx.Debit(ctx, wallet.Entry{
				MemberID:       req.MemberID,
				Amount:         decision.Cost,
				Kind:           wallet.KindCharge,
				Description:    fmt.Sprintf("%s on %s at %s", activity, v.StartDate.Format(time.DateOnly), slot),
				IdempotencyKey: ChargeKey(v.ID),
			})
			if err != nil {
				return err
			}
		}

		visit, cost = v, decision.Cost
		return nil
	})

	if errors.Is(err, errDuplicateRequest) {
		// A concurrent request with the same key committed first.
		err = s.store.WithinTx(ctx, func(tx Tx) error {
			existing, err := tx.FindVisitByRequestKey(ctx, req.MemberID, req.RequestKey)
			if err == nil && existing == nil {
				err = ErrVisitNotFound
			}
			visit, replayed = existing, true
			return err
		})
	}
	if err != nil {
		return nil, err
	}

	if replayed {
		metrics.RecordBookingOp("create", "replayed")
		return visit, nil
	}

	metrics.RecordBookingOp("create", "ok")
	logger.Info("visit booked",
		"visit_id", visit.ID,
		"member_id", visit.MemberID,
		"facility_id", visit.FacilityID,
		"date", visit.StartDate.Format(time.DateOnly),
		"time", visit.StartTime,
		"cost", cost.StringFixed(2),
	)
	s.invalidate(ctx, visit.FacilityID, visit.StartDate)
	s.publish(ctx, events.BookingCreated, visit, decimal.Zero)
	return visit, nil
}

func (s *service) CancelBooking(ctx context.Context, memberID, visitID int, reason string) (decimal.Decimal, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Cancel", trace.WithAttributes(attribute.Int("visit.id", visitID)))
	defer span.End()

	now := s.clock.Now()
	var (
		visit *Visit
		fee   decimal.Decimal
	)

	err := s.store.WithinTx(ctx, func(tx Tx) error {
		v, err := s.lockOwnScheduled(ctx, tx, memberID, visitID)
		if err != nil {
			return err
		}

		start, err := s.visitStart(v)
		if err != nil {
			return err
		}
		policy, err := s.facilities.GetPolicy(ctx, v.FacilityID)
		if err != nil {
			return err
		}
		fee, err = changeFee(start, now, policy.CancellationHours, policy.CancellationFee, policy.LateChange)
		if err != nil {
			return err
		}

		v.Status = StatusCancelled
		v.StatusReason = reason
		if err := tx.UpdateVisit(ctx, v); err != nil {
			return err
		}
		if err := tx.ReleaseSlot(ctx, s.slotKey(v)); err != nil {
			return err
		}

		if fee.IsPositive() {
			_, err := tx.Debit(ctx, wallet.Entry{
				MemberID:       v.MemberID,
				Amount:         fee,
				Kind:           wallet.KindFee,
				Description:    "late cancellation fee",
				IdempotencyKey: FeeKey(v.ID, FeeCancellation, 0),
				AllowNegative:  true,
			})
			if err != nil {
				return err
			}
		}

		visit = v
		return nil
	})
	if err != nil {
		return decimal.Zero, s.fail(span, "cancel", err)
	}

	metrics.RecordBookingOp("cancel", "ok")
	s.recordFee(FeeCancellation, fee)
	logger.Info("visit cancelled", "visit_id", visit.ID, "member_id", visit.MemberID, "fee", fee.StringFixed(2))
	s.invalidate(ctx, visit.FacilityID, visit.StartDate)
	s.publish(ctx, events.BookingCancelled, visit, fee)
	return fee, nil
}

func (s *service) RescheduleBooking(ctx context.Context, memberID, visitID int, req RescheduleRequest) (*Visit, decimal.Decimal, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Reschedule", trace.WithAttributes(attribute.Int("visit.id", visitID)))
	defer span.End()

	newDate, newSlot, err := s.parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, decimal.Zero, s.fail(span, "reschedule", err)
	}

	now := s.clock.Now()
	var (
		visit   *Visit
		oldDate time.Time
		fee     decimal.Decimal
	)

	err = s.store.WithinTx(ctx, func(tx Tx) error {
		v, err := s.lockOwnScheduled(ctx, tx, memberID, visitID)
		if err != nil {
			return err
		}

		start, err := s.visitStart(v)
		if err != nil {
			return err
		}
		policy, err := s.facilities.GetPolicy(ctx, v.FacilityID)
		if err != nil {
			return err
		}
		fee, err = changeFee(start, now, policy.RescheduleHours, policy.RescheduleFee, policy.LateChange)
		if err != nil {
			return err
		}

		oldKey := s.slotKey(v)
		newKey := occupancy.SlotKey{FacilityID: v.FacilityID, Date: newDate, Time: newSlot}
		if oldKey.String() == newKey.String() {
			return fmt.Errorf("%w: visit is already in that slot", ErrInvalidRequest)
		}

		m, _, err := tx.LockMembership(ctx, v.MembershipID)
		if err != nil {
			return membershipError(err)
		}
		if !membership.Covers(m, newDate) {
			return fmt.Errorf("%w: %s is outside the membership period", ErrMembershipNotEligible, newDate.Format(time.DateOnly))
		}

		f, err := s.facilities.GetFacility(ctx, v.FacilityID)
		if err != nil {
			return facilityError(err)
		}
		hours, err := s.facilities.GetOperatingHours(ctx, f.ID, newDate)
		if err != nil {
			return err
		}
		if !facility.HasSlot(hours, newDate, newSlot, now) {
			return fmt.Errorf("%w: %s is not a bookable slot", ErrSlotUnavailable, newKey)
		}

		dup, err := tx.HasScheduledVisitOnDate(ctx, v.MemberID, v.FacilityID, newDate, v.ID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateBookingForDay
		}

		// Both moves share the unit of work: a full target rolls the release back.
		if err := tx.ReleaseSlot(ctx, oldKey); err != nil {
			return err
		}
		ok, err := tx.ReserveSlot(ctx, newKey, f.EffectiveCapacity())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s is full", ErrSlotUnavailable, newKey)
		}

		oldDate = v.StartDate
		v.StartDate = newDate
		v.EndDate = newDate
		v.StartTime = newSlot
		v.RescheduleCount++
		v.StatusReason = req.Reason
		if err := tx.UpdateVisit(ctx, v); err != nil {
			return err
		}

		if fee.IsPositive() {
			_, err := tx.Debit(ctx, wallet.Entry{
				MemberID:       v.MemberID,
				Amount:         fee,
				Kind:           wallet.KindFee,
				Description:    "late reschedule fee",
				IdempotencyKey: FeeKey(v.ID, FeeReschedule, v.RescheduleCount),
				AllowNegative:  true,
			})
			if err != nil {
				return err
			}
		}

		visit = v
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, s.fail(span, "reschedule", err)
	}

	metrics.RecordBookingOp("reschedule", "ok")
	s.recordFee(FeeReschedule, fee)
	logger.Info("visit rescheduled",
		"visit_id", visit.ID,
		"from", oldDate.Format(time.DateOnly),
		"to", visit.StartDate.Format(time.DateOnly),
		"time", visit.StartTime,
		"fee", fee.StringFixed(2),
	)
	s.invalidate(ctx, visit.FacilityID, oldDate, visit.StartDate)
	s.publish(ctx, events.BookingRescheduled, visit, fee)
	return visit, fee, nil
}

func (s *service) CheckIn(ctx context.Context, memberID, visitID int) (*Visit, error) {
	ctx, span := s.tracer.Start(ctx, "booking.CheckIn", trace.WithAttributes(attribute.Int("visit.id", visitID)))
	defer span.End()

	now := s.clock.Now()
	var (
		visit   *Visit
		already bool
	)

	err := s.store.WithinTx(ctx, func(tx Tx) error {
		v, err := s.lockOwnScheduled(ctx, tx, memberID, visitID)
		if err != nil {
			return err
		}
		if v.CheckedInAt != nil {
			visit, already = v, true
			return nil
		}

		start, err := s.visitStart(v)
		if err != nil {
			return err
		}
		if !checkInOpen(start, now) {
			return fmt.Errorf("%w: opens %s", ErrCheckInWindow, start.Add(-CheckInOpens).Format(time.DateTime))
		}

		v.CheckedInAt = &now
		if err := tx.UpdateVisit(ctx, v); err != nil {
			return err
		}
		visit = v
		return nil
	})
	if err != nil {
		return nil, s.fail(span, "check_in", err)
	}

	if !already {
		metrics.RecordBookingOp("check_in", "ok")
		s.publish(ctx, events.VisitCheckedIn, visit, decimal.Zero)
	}
	return visit, nil
}

func (s *service) GetAvailableSlots(ctx context.Context, facilityID int, date time.Time) ([]SlotAvailability, error) {
	ctx, span := s.tracer.Start(ctx, "booking.AvailableSlots", trace.WithAttributes(attribute.Int("facility.id", facilityID)))
	defer span.End()

	date = s.civil(date)

	var cached []SlotAvailability
	hit, err := s.cache.Get(ctx, facilityID, date, &cached)
	if err != nil {
		logger.WithError(err).Warn("slot cache read failed", "facility_id", facilityID)
	}
	metrics.RecordSlotCache(hit)
	if hit {
		return cached, nil
	}

	f, err := s.facilities.GetFacility(ctx, facilityID)
	if err != nil {
		return nil, s.fail(span, "slots", err)
	}
	hours, err := s.facilities.GetOperatingHours(ctx, f.ID, date)
	if err != nil {
		return nil, s.fail(span, "slots", err)
	}
	counts, err := s.store.SlotCounts(ctx, f.ID, date)
	if err != nil {
		return nil, s.fail(span, "slots", err)
	}

	capacity := f.EffectiveCapacity()
	out := []SlotAvailability{}
	for slot := range facility.Slots(hours, date, s.clock.Now()) {
		out = append(out, SlotAvailability{Time: slot.Time, AvailableCount: max(capacity-counts[slot.Time], 0)})
	}

	if err := s.cache.Set(ctx, f.ID, date, out); err != nil {
		logger.WithError(err).Warn("slot cache write failed", "facility_id", f.ID)
	}
	return out, nil
}

func (s *service) ListMemberVisits(ctx context.Context, memberID int) ([]Visit, error) {
	return s.store.ListMemberVisits(ctx, memberID)
}

// RefundFee credits back a policy fee charged on a visit. Each fee can be
// refunded once; repeating the call returns the first refund.
func (s *service) RefundFee(ctx context.Context, visitID int, kind FeeKind, seq int) (*wallet.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "booking.RefundFee", trace.WithAttributes(
		attribute.Int("visit.id", visitID),
		attribute.String("fee.kind", string(kind)),
	))
	defer span.End()

	if !kind.Valid() {
		return nil, s.fail(span, "refund", fmt.Errorf("%w: unknown fee kind %q", ErrInvalidRequest, kind))
	}

	var (
		visit  *Visit
		refund *wallet.Transaction
	)
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		v, err := tx.LockVisit(ctx, visitID)
		if err != nil {
			return err
		}

		feeKey := FeeKey(v.ID, kind, seq)
		charged, err := tx.FindTransaction(ctx, feeKey)
		if err != nil {
			return err
		}
		if charged == nil {
			return fmt.Errorf("%w: %s", ErrNotRefundable, feeKey)
		}

		refund, err = tx.Credit(ctx, wallet.Entry{
			MemberID:       v.MemberID,
			Amount:         charged.Amount.Abs(),
			Kind:           wallet.KindRefund,
			Description:    fmt.Sprintf("refund of %s", kind),
			IdempotencyKey: RefundKey(feeKey),
		})
		visit = v
		return err
	})
	if err != nil {
		return nil, s.fail(span, "refund", err)
	}

	metrics.RecordBookingOp("refund", "ok")
	logger.Info("fee refunded", "visit_id", visit.ID, "kind", kind, "amount", refund.Amount.StringFixed(2))
	s.publish(ctx, events.FeeRefunded, visit, refund.Amount)
	return refund, nil
}

func (s *service) DueVisits(ctx context.Context, asOf time.Time) ([]Visit, error) {
	return s.store.ListDueVisits(ctx, s.civil(asOf.In(s.loc)))
}

// SweepVisit applies the sweep transition to one visit at asOf. The visit is
// re-read under lock, so a visit another pass or a member already moved out
// of scheduled is left alone.
func (s *service) SweepVisit(ctx context.Context, visitID int, asOf time.Time) (SweepOutcome, decimal.Decimal, error) {
	ctx, span := s.tracer.Start(ctx, "booking.SweepVisit", trace.WithAttributes(attribute.Int("visit.id", visitID)))
	defer span.End()

	var (
		visit   *Visit
		outcome = SweepUntouched
		fee     decimal.Decimal
	)

	err := s.store.WithinTx(ctx, func(tx Tx) error {
		v, err := tx.LockVisit(ctx, visitID)
		if err != nil {
			return err
		}
		start, err := s.visitStart(v)
		if err != nil {
			return err
		}

		outcome = sweepOutcome(v, start, asOf)
		switch outcome {
		case SweepCompleted:
			v.Status = StatusCompleted
		case SweepMissed:
			v.Status = StatusMissed
			v.StatusReason = "no check-in within grace period"
		default:
			return nil
		}
		if err := tx.UpdateVisit(ctx, v); err != nil {
			return err
		}
		visit = v

		if outcome != SweepMissed {
			return nil
		}
		policy, err := s.facilities.GetPolicy(ctx, v.FacilityID)
		if err != nil {
			return err
		}
		if !policy.LateFee.IsPositive() {
			return nil
		}
		_, err = tx.Debit(ctx, wallet.Entry{
			MemberID:       v.MemberID,
			Amount:         policy.LateFee,
			Kind:           wallet.KindFee,
			Description:    "missed visit fee",
			IdempotencyKey: FeeKey(v.ID, FeeLate, 0),
			AllowNegative:  true,
		})
		if err != nil {
			return err
		}
		fee = policy.LateFee
		return nil
	})
	if err != nil {
		return SweepUntouched, decimal.Zero, s.fail(span, "sweep", err)
	}

	span.SetAttributes(attribute.String("sweep.outcome", string(outcome)))
	switch outcome {
	case SweepCompleted:
		s.publish(ctx, events.VisitCompleted, visit, decimal.Zero)
	case SweepMissed:
		s.recordFee(FeeLate, fee)
		s.publish(ctx, events.VisitMissed, visit, fee)
	}
	return outcome, fee, nil
}

func (s *service) lockOwnScheduled(ctx context.Context, tx Tx, memberID, visitID int) (*Visit, error) {
	v, err := tx.LockVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if v.MemberID != memberID {
		return nil, ErrForbidden
	}
	if v.Status.Terminal() {
		return nil, fmt.Errorf("%w: visit %d is %s", ErrInvalidTransition, v.ID, v.Status)
	}
	return v, nil
}

func (s *service) parseSlot(date, slot string) (time.Time, string, error) {
	d, err := time.ParseInLocation(time.DateOnly, date, s.loc)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: date: %v", ErrInvalidRequest, err)
	}
	minutes, err := facility.ParseClock(slot)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return d, facility.FormatClock(minutes), nil
}

// civil re-reads a stored date as midnight in the facility zone.
func (s *service) civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *service) visitStart(v *Visit) (time.Time, error) {
	start, err := facility.At(s.civil(v.StartDate), v.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: visit %d: %v", ErrDataIntegrity, v.ID, err)
	}
	return start, nil
}

func (s *service) slotKey(v *Visit) occupancy.SlotKey {
	return occupancy.SlotKey{FacilityID: v.FacilityID, Date: s.civil(v.StartDate), Time: v.StartTime}
}

func (s *service) invalidate(ctx context.Context, facilityID int, dates ...time.Time) {
	for i, d := range dates {
		dates[i] = s.civil(d)
	}
	if err := s.cache.Invalidate(ctx, facilityID, dates...); err != nil {
		logger.WithError(err).Warn("slot cache invalidation failed", "facility_id", facilityID)
	}
}

// publish hands the event to the broker after commit. Failures are logged
// and never reach the caller.
func (s *service) publish(ctx context.Context, typ string, v *Visit, fee decimal.Decimal) {
	e := events.New(typ, s.clock.Now())
	e.VisitID = v.ID
	e.MemberID = v.MemberID
	e.FacilityID = v.FacilityID
	e.Date = v.StartDate.Format(time.DateOnly)
	e.Time = v.StartTime
	e.Fee = fee

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, e); err != nil {
		metrics.RecordEvent(typ, "error")
		logger.WithError(err).Warn("event publish failed", "type", typ, "visit_id", v.ID)
		return
	}
	metrics.RecordEvent(typ, "ok")
}

func (s *service) recordFee(kind FeeKind, fee decimal.Decimal) {
	if fee.IsPositive() {
		metrics.RecordFee(string(kind), fee.InexactFloat64())
	}
}

func (s *service) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, Reason(err))
	metrics.RecordBookingOp(op, Reason(err))
	s.logFailure(op, err)
	return err
}

func (s *service) logFailure(op string, err error) {
	if errors.Is(err, ErrDataIntegrity) {
		logger.WithError(err).Error("data integrity fault", "severity", "critical", "operation", op)
		return
	}
	logger.Debug("booking operation rejected", "operation", op, "reason", Reason(err), "error", err.Error())
}

func membershipError(err error) error {
	switch {
	case errors.Is(err, membership.ErrMembershipNotFound):
		return fmt.Errorf("%w: %v", ErrMembershipNotEligible, err)
	case errors.Is(err, membership.ErrPlanMissing), errors.Is(err, membership.ErrUnknownDuration):
		return fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	default:
		return err
	}
}

func facilityError(err error) error {
	if errors.Is(err, facility.ErrFacilityNotFound) {
		return fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	}
	return err
}

type noCache struct{}

func (noCache) Get(context.Context, int, time.Time, any) (bool, error) { return false, nil }
func (noCache) Set(context.Context, int, time.Time, any) error         { return nil }
func (noCache) Invalidate(context.Context, int, ...time.Time) error    { return nil }
