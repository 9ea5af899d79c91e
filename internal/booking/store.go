package booking

import (
	"context"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/membership"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/occupancy"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/wallet"
)

// Store is the persistence boundary of the booking lifecycle. Every
// state-changing step runs inside WithinTx; an error returned from fn
// rolls the whole unit back.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	GetVisit(ctx context.Context, id int) (*Visit, error)
	ListMemberVisits(ctx context.Context, memberID int) ([]Visit, error)
	// ListDueVisits returns scheduled visits whose start date is on or before before.
	ListDueVisits(ctx context.Context, before time.Time) ([]Visit, error)
	SlotCounts(ctx context.Context, facilityID int, date time.Time) (map[string]int, error)
}

// Tx is one unit of work. Lock* methods hold their row until the unit ends.
type Tx interface {
	LockMembership(ctx context.Context, id int) (*membership.Membership, *membership.Plan, error)
	CountMembershipVisits(ctx context.Context, membershipID int) (int, error)

	// FindVisitByRequestKey returns nil, nil when the member has no visit with key.
	FindVisitByRequestKey(ctx context.Context, memberID int, key string) (*Visit, error)
	HasScheduledVisitOnDate(ctx context.Context, memberID, facilityID int, date time.Time, excludeVisitID int) (bool, error)
	InsertVisit(ctx context.Context, v *Visit) error
	LockVisit(ctx context.Context, id int) (*Visit, error)
	UpdateVisit(ctx context.Context, v *Visit) error

	ReserveSlot(ctx context.Context, key occupancy.SlotKey, capacity int) (bool, error)
	ReleaseSlot(ctx context.Context, key occupancy.SlotKey) error

	Debit(ctx context.Context, e wallet.Entry) (*wallet.Transaction, error)
	Credit(ctx context.Context, e wallet.Entry) (*wallet.Transaction, error)
	// FindTransaction returns nil, nil when no ledger row carries key.
	FindTransaction(ctx context.Context, key string) (*wallet.Transaction, error)
}
