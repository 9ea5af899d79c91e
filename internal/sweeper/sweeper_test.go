package sweeper

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/booking"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/clock"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/logger"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

var asOf = time.Date(2024, 1, 1, 7, 20, 0, 0, time.UTC)

type MockVisits struct {
	mock.Mock
}

func (m *MockVisits) DueVisits(ctx context.Context, asOf time.Time) ([]booking.Visit, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.Visit), args.Error(1)
}

func (m *MockVisits) SweepVisit(ctx context.Context, visitID int, asOf time.Time) (booking.SweepOutcome, decimal.Decimal, error) {
	args := m.Called(ctx, visitID, asOf)
	return args.Get(0).(booking.SweepOutcome), args.Get(1).(decimal.Decimal), args.Error(2)
}

func TestRunMissedVisitSweep_Tallies(t *testing.T) {
	visits := new(MockVisits)
	visits.On("DueVisits", mock.Anything, asOf).Return([]booking.Visit{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}, nil)
	visits.On("SweepVisit", mock.Anything, 1, asOf).Return(booking.SweepCompleted, decimal.Zero, nil)
	visits.On("SweepVisit", mock.Anything, 2, asOf).Return(booking.SweepMissed, decimal.NewFromInt(300), nil)
	visits.On("SweepVisit", mock.Anything, 3, asOf).Return(booking.SweepUntouched, decimal.Zero, errors.New("deadlock detected"))
	visits.On("SweepVisit", mock.Anything, 4, asOf).Return(booking.SweepMissed, decimal.NewFromInt(300), nil)
	visits.On("SweepVisit", mock.Anything, 5, asOf).Return(booking.SweepUntouched, decimal.Zero, nil)

	res, err := New(visits, clock.NewManual(asOf)).RunMissedVisitSweep(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Examined)
	assert.Equal(t, 1, res.Completed)
	assert.Equal(t, 2, res.Missed)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, "600.00", res.FeesCharged.StringFixed(2))
	visits.AssertExpectations(t)
}

func TestRunMissedVisitSweep_DueVisitsError(t *testing.T) {
	visits := new(MockVisits)
	visits.On("DueVisits", mock.Anything, asOf).Return(nil, errors.New("db down"))

	_, err := New(visits, clock.NewManual(asOf)).RunMissedVisitSweep(context.Background(), asOf)
	assert.Error(t, err)
	visits.AssertNotCalled(t, "SweepVisit", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunMissedVisitSweep_HoldsRedisLock(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	locker := NewRedisLocker(rdb)
	rmock.ExpectSetNX(LockKey, locker.token, time.Minute).SetVal(true)
	rmock.ExpectEval(releaseScript, []string{LockKey}, locker.token).SetVal(int64(1))

	visits := new(MockVisits)
	visits.On("DueVisits", mock.Anything, asOf).Return([]booking.Visit{}, nil)

	s := New(visits, clock.NewManual(asOf), WithLocker(locker), WithLockTTL(time.Minute))
	_, err := s.RunMissedVisitSweep(context.Background(), asOf)
	require.NoError(t, err)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestRunMissedVisitSweep_SkipsWhenLocked(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	locker := NewRedisLocker(rdb)
	rmock.ExpectSetNX(LockKey, locker.token, defaultLockTTL).SetVal(false)

	visits := new(MockVisits)
	s := New(visits, clock.NewManual(asOf), WithLocker(locker))

	_, err := s.RunMissedVisitSweep(context.Background(), asOf)
	assert.ErrorIs(t, err, ErrSweepInProgress)
	visits.AssertNotCalled(t, "DueVisits", mock.Anything, mock.Anything)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestRunMissedVisitSweep_RunsUnlockedWhenRedisFails(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	locker := NewRedisLocker(rdb)
	rmock.ExpectSetNX(LockKey, locker.token, defaultLockTTL).SetErr(errors.New("connection refused"))

	visits := new(MockVisits)
	visits.On("DueVisits", mock.Anything, asOf).Return([]booking.Visit{{ID: 9}}, nil)
	visits.On("SweepVisit", mock.Anything, 9, asOf).Return(booking.SweepMissed, decimal.NewFromInt(300), nil)

	res, err := New(visits, clock.NewManual(asOf), WithLocker(locker)).RunMissedVisitSweep(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Missed)
}

type countingVisits struct {
	passes atomic.Int32
}

func (c *countingVisits) DueVisits(context.Context, time.Time) ([]booking.Visit, error) {
	c.passes.Add(1)
	return nil, nil
}

func (c *countingVisits) SweepVisit(context.Context, int, time.Time) (booking.SweepOutcome, decimal.Decimal, error) {
	return booking.SweepUntouched, decimal.Zero, nil
}

func TestStart_StopsOnCancel(t *testing.T) {
	visits := &countingVisits{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(visits, clock.Real{}, WithInterval(5*time.Millisecond)).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return visits.passes.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
