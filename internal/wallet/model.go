package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID        int             `db:"id" json:"id"`
	MemberID  int             `db:"member_id" json:"member_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

type Kind string

const (
	KindCharge Kind = "charge"
	KindFee    Kind = "fee"
	KindRefund Kind = "refund"
)

// Transaction is one ledger row. Amount is signed: debits are negative.
type Transaction struct {
	ID             int             `db:"id" json:"id"`
	WalletID       int             `db:"wallet_id" json:"wallet_id"`
	Kind           Kind            `db:"kind" json:"kind"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	BalanceAfter   decimal.Decimal `db:"balance_after" json:"balance_after"`
	Description    string          `db:"description" json:"description"`
	IdempotencyKey string          `db:"idempotency_key" json:"idempotency_key"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Entry describes a debit or credit. Amount is always positive; the
// direction comes from the call. AllowNegative lets fees overdraw.
type Entry struct {
	MemberID       int
	Amount         decimal.Decimal
	Kind           Kind
	Description    string
	IdempotencyKey string
	AllowNegative  bool
}
