package booking

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/facility"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/membership"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/occupancy"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/wallet"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store. A unit of work holds the store mutex for
// its whole run and works on a copy that is swapped in only on success,
// which gives the same serialization and rollback as row locks would.
type memStore struct {
	mu    sync.Mutex
	state memState

	// failNext, when set, makes the next WithinTx fail after fn succeeds,
	// simulating a crash before commit.
	failNext error
}

type memState struct {
	nextVisitID int
	visits      map[int]Visit
	memberships map[int]membership.Membership
	plans       map[int]membership.Plan
	slots       map[string]int
	balances    map[int]decimal.Decimal
	ledger      map[string]wallet.Transaction
	ledgerOrder []string
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		nextVisitID: 1,
		visits:      map[int]Visit{},
		memberships: map[int]membership.Membership{},
		plans:       map[int]membership.Plan{},
		slots:       map[string]int{},
		balances:    map[int]decimal.Decimal{},
		ledger:      map[string]wallet.Transaction{},
	}}
}

func (s memState) clone() memState {
	c := s
	c.visits = maps.Clone(s.visits)
	c.memberships = maps.Clone(s.memberships)
	c.plans = maps.Clone(s.plans)
	c.slots = maps.Clone(s.slots)
	c.balances = maps.Clone(s.balances)
	c.ledger = maps.Clone(s.ledger)
	c.ledgerOrder = append([]string(nil), s.ledgerOrder...)
	return c
}

func slotID(facilityID int, date time.Time, slot string) string {
	return fmt.Sprintf("%d/%s/%s", facilityID, date.Format(time.DateOnly), slot)
}

// seeding helpers, used before any service call

func (s *memStore) addMembership(m membership.Membership, p membership.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.memberships[m.ID] = m
	s.state.plans[p.ID] = p
}

func (s *memStore) setBalance(memberID int, amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.balances[memberID] = decimal.RequireFromString(amount)
}

func (s *memStore) balance(memberID int) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.balances[memberID]
}

func (s *memStore) ledgerLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.ledgerOrder)
}

func (s *memStore) transaction(key string) (wallet.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.state.ledger[key]
	return t, ok
}

func (s *memStore) occupancy(facilityID int, date time.Time, slot string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.slots[slotID(facilityID, date, slot)]
}

func (s *memStore) visitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.visits)
}

func (s *memStore) putVisit(v Visit) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.state.nextVisitID
	s.state.nextVisitID++
	s.state.visits[v.ID] = v
	s.state.slots[slotID(v.FacilityID, v.StartDate, v.StartTime)]++
	return v.ID
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	s.state = tx.state
	return nil
}

func (s *memStore) GetVisit(ctx context.Context, id int) (*Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state.visits[id]
	if !ok {
		return nil, ErrVisitNotFound
	}
	return &v, nil
}

func (s *memStore) ListMemberVisits(ctx context.Context, memberID int) ([]Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Visit{}
	for _, v := range s.state.visits {
		if v.MemberID == memberID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListDueVisits(ctx context.Context, before time.Time) ([]Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Visit{}
	for _, v := range s.state.visits {
		if v.Status == StatusScheduled && !v.StartDate.After(before) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) SlotCounts(ctx context.Context, facilityID int, date time.Time) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := fmt.Sprintf("%d/%s/", facilityID, date.Format(time.DateOnly))
	out := map[string]int{}
	for k, n := range s.state.slots {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out[k[len(prefix):]] = n
		}
	}
	return out, nil
}

type memTx struct {
	state memState
}

func (t *memTx) LockMembership(ctx context.Context, id int) (*membership.Membership, *membership.Plan, error) {
	m, ok := t.state.memberships[id]
	if !ok {
		return nil, nil, membership.ErrMembershipNotFound
	}
	p, ok := t.state.plans[m.PlanID]
	if !ok {
		return &m, nil, membership.ErrPlanMissing
	}
	return &m, &p, nil
}

func (t *memTx) CountMembershipVisits(ctx context.Context, membershipID int) (int, error) {
	n := 0
	for _, v := range t.state.visits {
		if v.MembershipID == membershipID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) FindVisitByRequestKey(ctx context.Context, memberID int, key string) (*Visit, error) {
	for _, v := range t.state.visits {
		if v.MemberID == memberID && v.RequestKey == key {
			return &v, nil
		}
	}
	return nil, nil
}

func (t *memTx) HasScheduledVisitOnDate(ctx context.Context, memberID, facilityID int, date time.Time, excludeVisitID int) (bool, error) {
	for _, v := range t.state.visits {
		if v.ID != excludeVisitID && v.MemberID == memberID && v.FacilityID == facilityID &&
			v.Status == StatusScheduled && v.StartDate.Format(time.DateOnly) == date.Format(time.DateOnly) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertVisit(ctx context.Context, v *Visit) error {
	v.ID = t.state.nextVisitID
	t.state.nextVisitID++
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	t.state.visits[v.ID] = *v
	return nil
}

func (t *memTx) LockVisit(ctx context.Context, id int) (*Visit, error) {
	v, ok := t.state.visits[id]
	if !ok {
		return nil, ErrVisitNotFound
	}
	return &v, nil
}

func (t *memTx) UpdateVisit(ctx context.Context, v *Visit) error {
	if _, ok := t.state.visits[v.ID]; !ok {
		return ErrVisitNotFound
	}
	v.UpdatedAt = time.Now()
	t.state.visits[v.ID] = *v
	return nil
}

func (t *memTx) ReserveSlot(ctx context.Context, key occupancy.SlotKey, capacity int) (bool, error) {
	id := slotID(key.FacilityID, key.Date, key.Time)
	if t.state.slots[id] >= capacity {
		return false, nil
	}
	t.state.slots[id]++
	return true, nil
}

func (t *memTx) ReleaseSlot(ctx context.Context, key occupancy.SlotKey) error {
	id := slotID(key.FacilityID, key.Date, key.Time)
	if t.state.slots[id] > 0 {
		t.state.slots[id]--
	}
	return nil
}

func (t *memTx) Debit(ctx context.Context, e wallet.Entry) (*wallet.Transaction, error) {
	return t.apply(e, e.Amount.Neg())
}

func (t *memTx) Credit(ctx context.Context, e wallet.Entry) (*wallet.Transaction, error) {
	return t.apply(e, e.Amount)
}

func (t *memTx) FindTransaction(ctx context.Context, key string) (*wallet.Transaction, error) {
	tr, ok := t.state.ledger[key]
	if !ok {
		return nil, nil
	}
	return &tr, nil
}

func (t *memTx) apply(e wallet.Entry, delta decimal.Decimal) (*wallet.Transaction, error) {
	if tr, ok := t.state.ledger[e.IdempotencyKey]; ok {
		return &tr, nil
	}
	balance := t.state.balances[e.MemberID].Add(delta)
	if delta.IsNegative() && !e.AllowNegative && balance.IsNegative() {
		return nil, wallet.ErrInsufficientFunds
	}
	t.state.balances[e.MemberID] = balance
	tr := wallet.Transaction{
		ID:             len(t.state.ledgerOrder) + 1,
		Kind:           e.Kind,
		Amount:         delta,
		BalanceAfter:   balance,
		Description:    e.Description,
		IdempotencyKey: e.IdempotencyKey,
		CreatedAt:      time.Now(),
	}
	t.state.ledger[e.IdempotencyKey] = tr
	t.state.ledgerOrder = append(t.state.ledgerOrder, e.IdempotencyKey)
	return &tr, nil
}

type fakeFacilities struct {
	facility facility.Facility
	hours    facility.OperatingHours
	policy   facility.Policy
}

func strp(s string) *string { return &s }

func newFakeFacilities(capacity int) *fakeFacilities {
	return &fakeFacilities{
		facility: facility.Facility{ID: 1, Name: "Iron Temple", Capacity: &capacity},
		hours: facility.OperatingHours{
			FacilityID:   1,
			Day:          facility.DayDaily,
			MorningOpen:  strp("06:00"),
			MorningClose: strp("10:00"),
			EveningOpen:  strp("17:00"),
			EveningClose: strp("21:00"),
		},
		policy: facility.DefaultPolicy(1),
	}
}

func (f *fakeFacilities) GetFacility(ctx context.Context, id int) (*facility.Facility, error) {
	if id != f.facility.ID {
		return nil, facility.ErrFacilityNotFound
	}
	fc := f.facility
	return &fc, nil
}

func (f *fakeFacilities) GetOperatingHours(ctx context.Context, facilityID int, date time.Time) (*facility.OperatingHours, error) {
	h := f.hours
	return &h, nil
}

func (f *fakeFacilities) GetPolicy(ctx context.Context, facilityID int) (facility.Policy, error) {
	return f.policy, nil
}
