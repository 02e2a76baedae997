package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING id, user_id, balance_credits, created_at, updated_at`,
		userID,
	).StructScan(w)

	if err != nil {
		return nil, err
	}

	return w, nil
}

// lockWallet selects the wallet row FOR UPDATE inside tx, creating it
// when absent. The row lock serializes concurrent reserve/reverse calls
// for the same user.
func lockWallet(ctx context.Context, tx *sqlx.Tx, userID int) (*Wallet, error) {
	var w Wallet
	err := tx.QueryRowxContext(ctx,
		`SELECT id, user_id, balance_credits, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&w)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING id, user_id, balance_credits, created_at, updated_at`,
		userID,
	).StructScan(&w)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Reserve debits credits and writes the debit ledger row in one storage
// transaction. Either both commit or neither does. No lock is held after
// Reserve returns, so the caller is free to spend tens of seconds on the
// external call.
func (r *repository) Reserve(ctx context.Context, userID, credits int, externalRef string) (*Reservation, error) {
	if credits <= 0 {
		return nil, errors.New("reservation amount must be positive")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := w.BalanceCredits - credits
	if newBalance < 0 {
		return nil, ErrInsufficientCredits
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance_credits = $1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return nil, err
	}

	var txID int
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallet_transactions (user_id, type, credits, gateway, external_ref, status, balance_after)
		 VALUES ($1, 'debit', $2, $3, $4, 'success', $5)
		 RETURNING id`,
		userID, credits, "internal", externalRef, newBalance,
	).Scan(&txID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Reservation{
		UserID:        userID,
		Credits:       credits,
		ExternalRef:   externalRef,
		TransactionID: txID,
	}, nil
}

// Reverse credits the reserved amount back and writes the refund ledger
// row. Safe to call more than once: only the first call does anything.
func (r *repository) Reverse(ctx context.Context, res *Reservation) error {
	if res == nil {
		return errors.New("nil reservation")
	}
	if !res.consume() {
		return nil
	}

	err := r.reverseOnce(ctx, res)
	if err != nil {
		// The refund did not commit, allow a retry.
		res.reversed.Store(false)
		return fmt.Errorf("reverse reservation: %w", err)
	}
	return nil
}

func (r *repository) reverseOnce(ctx context.Context, res *Reservation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, res.UserID)
	if err != nil {
		return err
	}

	newBalance := w.BalanceCredits + res.Credits

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance_credits = $1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_transactions (user_id, type, credits, gateway, external_ref, status, balance_after)
		 VALUES ($1, 'refund', $2, $3, $4, 'success', $5)`,
		res.UserID, res.Credits, "internal", res.ExternalRef, newBalance,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Purchase credits the wallet with a paid pack and records the purchase
// with its money amount.
func (r *repository) Purchase(ctx context.Context, userID int, pack CreditPack, orderID string) (*Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := w.BalanceCredits + pack.Credits

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance_credits = $1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return nil, err
	}

	var t Transaction
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallet_transactions (user_id, type, credits, amount_cents, gateway, external_ref, status, balance_after)
		 VALUES ($1, 'purchase', $2, $3, 'credit_pack', $4, 'success', $5)
		 RETURNING id, user_id, type, credits, amount_cents, currency, gateway, external_ref, status, balance_after, created_at`,
		userID, pack.Credits, pack.AmountCents, orderID, newBalance,
	).StructScan(&t)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 10
	}

	txs := []Transaction{}
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, user_id, type, credits, amount_cents, currency, gateway, external_ref, status, balance_after, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}

func (r *repository) CountTransactions(ctx context.Context, userID int) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1`, userID)
	return total, err
}
