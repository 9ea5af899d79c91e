package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrMembershipNotFound = errors.New("membership not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const membershipColumns = `id, member_id, facility_id, plan_id, start_date, end_date, status, payment_status`

func (r *Repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	return getMembership(ctx, r.db, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id)
}

func (r *Repository) GetPlan(ctx context.Context, id int) (*Plan, error) {
	return getPlan(ctx, r.db, id)
}

func (r *Repository) CountVisits(ctx context.Context, membershipID int) (int, error) {
	return r.CountVisitsTx(ctx, r.db, membershipID)
}

// LockWithPlanTx row-locks the membership for the rest of tx so concurrent
// bookings against the same entitlement serialize, then loads its plan.
func (r *Repository) LockWithPlanTx(ctx context.Context, q sqlx.QueryerContext, id int) (*Membership, *Plan, error) {
	m, err := getMembership(ctx, q, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, nil, err
	}

	p, err := getPlan(ctx, q, m.PlanID)
	if errors.Is(err, sql.ErrNoRows) {
		return m, nil, fmt.Errorf("%w: plan %d", ErrPlanMissing, m.PlanID)
	}
	if err != nil {
		return nil, nil, err
	}

	return m, p, nil
}

// CountVisitsTx counts every visit ever booked against the membership. Visits
// are never deleted, so this is the consumed day-credit count.
func (r *Repository) CountVisitsTx(ctx context.Context, q sqlx.QueryerContext, membershipID int) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(*) FROM visits WHERE membership_id = $1`, membershipID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func getMembership(ctx context.Context, q sqlx.QueryerContext, query string, id int) (*Membership, error) {
	var m Membership
	err := sqlx.GetContext(ctx, q, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func getPlan(ctx context.Context, q sqlx.QueryerContext, id int) (*Plan, error) {
	var p Plan
	err := sqlx.GetContext(ctx, q, &p, `SELECT id, facility_id, tier, duration, price FROM plans WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
