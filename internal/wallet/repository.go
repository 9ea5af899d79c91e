package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrMissingKey        = errors.New("idempotency key is required")
)

const (
	walletColumns      = `id, member_id, balance, created_at, updated_at`
	transactionColumns = `id, wallet_id, kind, amount, balance_after, description, idempotency_key, created_at`
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetOrCreateWallet(ctx context.Context, memberID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT `+walletColumns+` FROM wallets WHERE member_id = $1`, memberID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (member_id)
		 VALUES ($1)
		 ON CONFLICT (member_id) DO UPDATE SET member_id = EXCLUDED.member_id
		 RETURNING `+walletColumns,
		memberID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (r *Repository) Debit(ctx context.Context, e Entry) (*Transaction, error) {
	var t *Transaction
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		t, err = r.DebitTx(ctx, tx, e)
		return err
	})
	return t, err
}

func (r *Repository) Credit(ctx context.Context, e Entry) (*Transaction, error) {
	var t *Transaction
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		t, err = r.CreditTx(ctx, tx, e)
		return err
	})
	return t, err
}

// DebitTx takes e.Amount from the member's wallet within tx. A key already
// on the ledger returns the stored transaction and changes nothing.
func (r *Repository) DebitTx(ctx context.Context, tx sqlx.ExtContext, e Entry) (*Transaction, error) {
	return r.apply(ctx, tx, e, e.Amount.Neg())
}

func (r *Repository) CreditTx(ctx context.Context, tx sqlx.ExtContext, e Entry) (*Transaction, error) {
	return r.apply(ctx, tx, e, e.Amount)
}

func (r *Repository) apply(ctx context.Context, tx sqlx.ExtContext, e Entry, delta decimal.Decimal) (*Transaction, error) {
	if !e.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, e.Amount)
	}
	if e.IdempotencyKey == "" {
		return nil, ErrMissingKey
	}

	w, err := lockWallet(ctx, tx, e.MemberID)
	if err != nil {
		return nil, err
	}

	existing, err := r.FindByKeyTx(ctx, tx, e.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	balance := w.Balance.Add(delta)
	if delta.IsNegative() && !e.AllowNegative && balance.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s, need %s", ErrInsufficientFunds, w.Balance.StringFixed(2), e.Amount.StringFixed(2))
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance = $1, updated_at = NOW()
		 WHERE id = $2`,
		balance, w.ID,
	)
	if err != nil {
		return nil, err
	}

	var t Transaction
	err = sqlx.GetContext(ctx, tx, &t,
		`INSERT INTO wallet_transactions (wallet_id, kind, amount, balance_after, description, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+transactionColumns,
		w.ID, e.Kind, delta, balance, e.Description, e.IdempotencyKey,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// FindByKeyTx returns the ledger row recorded under key, or nil when there is none.
func (r *Repository) FindByKeyTx(ctx context.Context, q sqlx.QueryerContext, key string) (*Transaction, error) {
	var t Transaction
	err := sqlx.GetContext(ctx, q, &t,
		`SELECT `+transactionColumns+` FROM wallet_transactions WHERE idempotency_key = $1`,
		key,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func lockWallet(ctx context.Context, tx sqlx.ExtContext, memberID int) (*Wallet, error) {
	var w Wallet
	err := sqlx.GetContext(ctx, tx, &w,
		`SELECT `+walletColumns+`
		 FROM wallets
		 WHERE member_id = $1
		 FOR UPDATE`,
		memberID,
	)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = sqlx.GetContext(ctx, tx, &w,
		`INSERT INTO wallets (member_id)
		 VALUES ($1)
		 RETURNING `+walletColumns,
		memberID,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) GetTransactions(ctx context.Context, memberID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var walletID int
	err := r.db.GetContext(ctx, &walletID, `SELECT id FROM wallets WHERE member_id = $1`, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Transaction{}, nil
		}
		return nil, err
	}

	txs := []Transaction{}
	err = r.db.SelectContext(ctx, &txs, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
