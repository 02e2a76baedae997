package wallet

import (
	"sync/atomic"
	"time"
)

const (
	TxPurchase = "purchase"
	TxDebit    = "debit"
	TxRefund   = "refund"

	TxStatusSuccess  = "success"
	TxStatusFailed   = "failed"
	TxStatusReversed = "reversed"
)

type Wallet struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	BalanceCredits int       `db:"balance_credits" json:"balance_credits"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only ledger row. Corrections are new rows
// (refund), never edits.
type Transaction struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	Type         string    `db:"type" json:"type"` // purchase, debit, refund
	Credits      int       `db:"credits" json:"credits"`
	AmountCents  *int64    `db:"amount_cents" json:"amount_cents,omitempty"`
	Currency     string    `db:"currency" json:"currency"`
	Gateway      string    `db:"gateway" json:"gateway"`
	ExternalRef  string    `db:"external_ref" json:"external_ref"`
	Status       string    `db:"status" json:"status"`
	BalanceAfter int       `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Reservation is the handle returned by Reserve. It lives only for the
// duration of the request that made it; the durable record is the debit
// transaction row.
type Reservation struct {
	UserID        int
	Credits       int
	ExternalRef   string
	TransactionID int

	reversed atomic.Bool
}

// consume flips the reservation to reversed exactly once. The second
// caller gets false, which is how double-refunds are prevented.
func (r *Reservation) consume() bool {
	return r.reversed.CompareAndSwap(false, true)
}

// Reversed reports whether the reservation has already been reversed.
func (r *Reservation) Reversed() bool {
	return r.reversed.Load()
}

// CreditPack is a purchasable bundle of credits.
type CreditPack struct {
	ID          int    `json:"id"`
	Credits     int    `json:"credits"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
}

// CreditPacks mirrors the packs offered at checkout, keyed by pack id.
var CreditPacks = map[int]CreditPack{
	1: {ID: 1, Credits: 10, AmountCents: 10000, Description: "10 Credits Pack"},
	2: {ID: 2, Credits: 25, AmountCents: 22500, Description: "25 Credits Pack"},
	3: {ID: 3, Credits: 50, AmountCents: 40000, Description: "50 Credits Pack"},
	4: {ID: 4, Credits: 100, AmountCents: 75000, Description: "100 Credits Pack"},
}
