package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/booking"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/clock"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/logger"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/metrics"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/tracing"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultLockTTL = 2 * time.Minute

var ErrSweepInProgress = errors.New("another sweep pass is running")

// Visits is the part of the booking service a sweep pass drives.
type Visits interface {
	DueVisits(ctx context.Context, asOf time.Time) ([]booking.Visit, error)
	SweepVisit(ctx context.Context, visitID int, asOf time.Time) (booking.SweepOutcome, decimal.Decimal, error)
}

type Result struct {
	AsOf        time.Time       `json:"as_of"`
	Examined    int             `json:"examined"`
	Completed   int             `json:"completed"`
	Missed      int             `json:"missed"`
	FeesCharged decimal.Decimal `json:"fees_charged"`
	Errors      int             `json:"errors"`
}

type Sweeper struct {
	visits   Visits
	locker   Locker
	clock    clock.Clock
	interval time.Duration
	lockTTL  time.Duration
	tracer   trace.Tracer
}

type Option func(*Sweeper)

func WithLocker(l Locker) Option {
	return func(s *Sweeper) { s.locker = l }
}

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) { s.interval = d }
}

func WithLockTTL(d time.Duration) Option {
	return func(s *Sweeper) { s.lockTTL = d }
}

func New(visits Visits, clk clock.Clock, opts ...Option) *Sweeper {
	s := &Sweeper{
		visits:   visits,
		locker:   noLock{},
		clock:    clk,
		interval: 5 * time.Minute,
		lockTTL:  defaultLockTTL,
		tracer:   tracing.Tracer("featuresgym/sweeper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunMissedVisitSweep settles every scheduled visit due by asOf. Each visit
// is its own transition; a failure is logged and counted and the pass goes on.
func (s *Sweeper) RunMissedVisitSweep(ctx context.Context, asOf time.Time) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "sweeper.Run", trace.WithAttributes(attribute.String("as_of", asOf.Format(time.RFC3339))))
	defer span.End()

	res := Result{AsOf: asOf, FeesCharged: decimal.Zero}

	ok, err := s.locker.Acquire(ctx, s.lockTTL)
	if err != nil {
		// Redis down: fall back to the visit state machine.
		logger.WithError(err).Warn("sweep lock unavailable, running unlocked")
	} else if !ok {
		span.SetStatus(codes.Error, "locked")
		return res, ErrSweepInProgress
	} else {
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx)); err != nil {
				logger.WithError(err).Warn("sweep lock release failed")
			}
		}()
	}

	started := time.Now()
	due, err := s.visits.DueVisits(ctx, asOf)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "due visits")
		return res, err
	}

	for _, v := range due {
		if ctx.Err() != nil {
			break
		}
		res.Examined++

		outcome, fee, err := s.visits.SweepVisit(ctx, v.ID, asOf)
		if err != nil {
			res.Errors++
			logger.WithError(err).Error("sweep of visit failed", "visit_id", v.ID)
			continue
		}
		switch outcome {
		case booking.SweepCompleted:
			res.Completed++
		case booking.SweepMissed:
			res.Missed++
			res.FeesCharged = res.FeesCharged.Add(fee)
		}
	}

	metrics.RecordSweep(res.Completed, res.Missed, res.Errors, time.Since(started).Seconds())
	span.SetAttributes(
		attribute.Int("sweep.completed", res.Completed),
		attribute.Int("sweep.missed", res.Missed),
		attribute.Int("sweep.errors", res.Errors),
	)
	logger.Info("sweep pass finished",
		"as_of", asOf.Format(time.RFC3339),
		"examined", res.Examined,
		"completed", res.Completed,
		"missed", res.Missed,
		"fees", res.FeesCharged.StringFixed(2),
		"errors", res.Errors,
	)
	return res, nil
}

// Start runs a pass every interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	logger.Info("sweeper started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.RunMissedVisitSweep(ctx, s.clock.Now()); err != nil && !errors.Is(err, ErrSweepInProgress) {
				logger.WithError(err).Error("sweep pass failed")
			}
		}
	}
}
