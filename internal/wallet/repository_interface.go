package wallet

import "context"

// Reader is the read side used by the HTTP handler.
type Reader interface {
	GetOrCreateWallet(ctx context.Context, memberID int) (*Wallet, error)
	GetTransactions(ctx context.Context, memberID int, limit, offset int) ([]Transaction, error)
}
