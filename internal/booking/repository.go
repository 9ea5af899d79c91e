package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/db"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/membership"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/occupancy"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/wallet"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	visitColumns = `id, member_id, facility_id, membership_id, start_date,
		to_char(start_time, 'HH24:MI') AS start_time, end_date, activity_type, status,
		recurrence, recurrence_until, days_of_week, notes, daily_rate, request_key,
		status_reason, reschedule_count, checked_in_at, created_at, updated_at`

	oneScheduledPerDayIndex = "visits_one_scheduled_per_day"
	uniqueViolation         = "23505"
)

// errDuplicateRequest means another transaction inserted the same request key first.
var errDuplicateRequest = errors.New("duplicate request key")

type repository struct {
	db          *sqlx.DB
	memberships *membership.Repository
	wallets     *wallet.Repository
	slots       *occupancy.Tracker
}

// NewRepository returns the Postgres Store. Membership, wallet and occupancy
// rows are reached through their own packages so each keeps its SQL.
func NewRepository(conn *sqlx.DB, memberships *membership.Repository, wallets *wallet.Repository, slots *occupancy.Tracker) Store {
	return &repository{db: conn, memberships: memberships, wallets: wallets, slots: slots}
}

func (r *repository) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&pgTx{tx: tx, repo: r})
	})
}

func (r *repository) GetVisit(ctx context.Context, id int) (*Visit, error) {
	return getVisit(ctx, r.db, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id)
}

func (r *repository) ListMemberVisits(ctx context.Context, memberID int) ([]Visit, error) {
	visits := []Visit{}
	err := r.db.SelectContext(ctx, &visits, `
		SELECT `+visitColumns+`
		FROM visits
		WHERE member_id = $1
		ORDER BY start_date DESC, start_time DESC
	`, memberID)
	if err != nil {
		return nil, err
	}
	return visits, nil
}

func (r *repository) ListDueVisits(ctx context.Context, before time.Time) ([]Visit, error) {
	visits := []Visit{}
	err := r.db.SelectContext(ctx, &visits, `
		SELECT `+visitColumns+`
		FROM visits
		WHERE status = 'scheduled' AND start_date <= $1
		ORDER BY start_date, start_time, id
	`, before.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	return visits, nil
}

func (r *repository) SlotCounts(ctx context.Context, facilityID int, date time.Time) (map[string]int, error) {
	return r.slots.CountsForDate(ctx, facilityID, date)
}

type pgTx struct {
	tx   *sqlx.Tx
	repo *repository
}

func (t *pgTx) LockMembership(ctx context.Context, id int) (*membership.Membership, *membership.Plan, error) {
	return t.repo.memberships.LockWithPlanTx(ctx, t.tx, id)
}

func (t *pgTx) CountMembershipVisits(ctx context.Context, membershipID int) (int, error) {
	return t.repo.memberships.CountVisitsTx(ctx, t.tx, membershipID)
}

func (t *pgTx) FindVisitByRequestKey(ctx context.Context, memberID int, key string) (*Visit, error) {
	v, err := getVisit(ctx, t.tx, `SELECT `+visitColumns+` FROM visits WHERE member_id = $1 AND request_key = $2`, memberID, key)
	if errors.Is(err, ErrVisitNotFound) {
		return nil, nil
	}
	return v, err
}

func (t *pgTx) HasScheduledVisitOnDate(ctx context.Context, memberID, facilityID int, date time.Time, excludeVisitID int) (bool, error) {
	return db.Exists(ctx, t.tx, `
		SELECT EXISTS(
			SELECT 1 FROM visits
			WHERE member_id = $1 AND facility_id = $2 AND start_date = $3
			  AND status = 'scheduled' AND id <> $4
		)
	`, memberID, facilityID, date.Format(time.DateOnly), excludeVisitID)
}

func (t *pgTx) InsertVisit(ctx context.Context, v *Visit) error {
	var until *string
	if v.RecurrenceUntil != nil {
		s := v.RecurrenceUntil.Format(time.DateOnly)
		until = &s
	}

	err := t.tx.QueryRowxContext(ctx, `
		INSERT INTO visits (member_id, facility_id, membership_id, start_date, start_time, end_date,
			activity_type, status, recurrence, recurrence_until, days_of_week, notes, daily_rate, request_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`,
		v.MemberID, v.FacilityID, v.MembershipID,
		v.StartDate.Format(time.DateOnly), v.StartTime, v.EndDate.Format(time.DateOnly),
		v.ActivityType, v.Status, v.Recurrence, until, v.DaysOfWeek, v.Notes, v.DailyRate, v.RequestKey,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	return mapVisitWriteError(err)
}

func (t *pgTx) LockVisit(ctx context.Context, id int) (*Visit, error) {
	return getVisit(ctx, t.tx, `SELECT `+visitColumns+` FROM visits WHERE id = $1 FOR UPDATE`, id)
}

func (t *pgTx) UpdateVisit(ctx context.Context, v *Visit) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE visits
		SET start_date = $2, start_time = $3, end_date = $4, status = $5, status_reason = $6,
			reschedule_count = $7, checked_in_at = $8, updated_at = NOW()
		WHERE id = $1
	`,
		v.ID, v.StartDate.Format(time.DateOnly), v.StartTime, v.EndDate.Format(time.DateOnly),
		v.Status, v.StatusReason, v.RescheduleCount, v.CheckedInAt,
	)
	if err != nil {
		return mapVisitWriteError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVisitNotFound
	}
	return nil
}

func (t *pgTx) ReserveSlot(ctx context.Context, key occupancy.SlotKey, capacity int) (bool, error) {
	return t.repo.slots.ReserveTx(ctx, t.tx, key, capacity)
}

func (t *pgTx) ReleaseSlot(ctx context.Context, key occupancy.SlotKey) error {
	return t.repo.slots.ReleaseTx(ctx, t.tx, key)
}

func (t *pgTx) Debit(ctx context.Context, e wallet.Entry) (*wallet.Transaction, error) {
	return t.repo.wallets.DebitTx(ctx, t.tx, e)
}

func (t *pgTx) Credit(ctx context.Context, e wallet.Entry) (*wallet.Transaction, error) {
	return t.repo.wallets.CreditTx(ctx, t.tx, e)
}

func (t *pgTx) FindTransaction(ctx context.Context, key string) (*wallet.Transaction, error) {
	return t.repo.wallets.FindByKeyTx(ctx, t.tx, key)
}

func getVisit(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*Visit, error) {
	var v Visit
	err := sqlx.GetContext(ctx, q, &v, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func mapVisitWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	if pqErr.Constraint == oneScheduledPerDayIndex {
		return ErrDuplicateBookingForDay
	}
	return errDuplicateRequest
}
