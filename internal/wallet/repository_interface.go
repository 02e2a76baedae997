package wallet

import "context"

type Repository interface {
	GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error)
	Reserve(ctx context.Context, userID, credits int, externalRef string) (*Reservation, error)
	Reverse(ctx context.Context, res *Reservation) error
	Purchase(ctx context.Context, userID int, pack CreditPack, orderID string) (*Transaction, error)
	GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
	CountTransactions(ctx context.Context, userID int) (int, error)
}
