package wallet

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupWalletMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func walletRows(id, userID, balance int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "balance_credits", "created_at", "updated_at"}).
		AddRow(id, userID, balance, time.Now(), time.Now())
}

func TestGetOrCreateWallet_WhenNotExists(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM wallets WHERE user_id = $1")).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id)")).
		WithArgs(10).
		WillReturnRows(walletRows(5, 10, 0))

	w, err := repo.GetOrCreateWallet(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 5, w.ID)
	require.Equal(t, 0, w.BalanceCredits)
}

func TestReserve_DebitsAndWritesLedgerRow(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance_credits, created_at, updated_at")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 12))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(7, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallet_transactions (user_id, type, credits, gateway, external_ref, status, balance_after)")).
		WithArgs(20, 5, "internal", "interview_abc123", 7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(99))
	mock.ExpectCommit()

	res, err := repo.Reserve(ctx, 20, 5, "interview_abc123")
	require.NoError(t, err)
	require.Equal(t, 5, res.Credits)
	require.Equal(t, 99, res.TransactionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_InsufficientCredits_NoWrites(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance_credits, created_at, updated_at")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 3))
	mock.ExpectRollback()

	res, err := repo.Reserve(ctx, 20, 5, "interview_abc123")
	require.ErrorIs(t, err, ErrInsufficientCredits)
	require.Nil(t, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_CreatesMissingWallet(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(33).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallets (user_id)")).
		WithArgs(33).
		WillReturnRows(walletRows(8, 33, 0))
	mock.ExpectRollback()

	// Fresh wallet starts at zero, so any positive reservation fails.
	_, err := repo.Reserve(ctx, 33, 1, "screening_def456")
	require.ErrorIs(t, err, ErrInsufficientCredits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_RejectsNonPositiveAmount(t *testing.T) {
	repo, _, close := setupWalletMock(t)
	defer close()

	_, err := repo.Reserve(context.Background(), 1, 0, "ref")
	require.Error(t, err)

	_, err = repo.Reserve(context.Background(), 1, -3, "ref")
	require.Error(t, err)
}

func TestReverse_RefundsOnce(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance_credits, created_at, updated_at")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 7))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(12, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallet_transactions (user_id, type, credits, gateway, external_ref, status, balance_after)")).
		WithArgs(20, 5, "internal", "interview_abc123", 12).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res := &Reservation{UserID: 20, Credits: 5, ExternalRef: "interview_abc123", TransactionID: 99}

	require.NoError(t, repo.Reverse(ctx, res))

	// Second call must not touch the database at all.
	require.NoError(t, repo.Reverse(ctx, res))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReverse_RetryAfterFailure(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()

	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	res := &Reservation{UserID: 20, Credits: 5, ExternalRef: "interview_abc123"}
	require.Error(t, repo.Reverse(ctx, res))
	require.False(t, res.Reversed())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance_credits, created_at, updated_at")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(5, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallet_transactions")).
		WithArgs(20, 5, "internal", "interview_abc123", 5).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Reverse(ctx, res))
	require.True(t, res.Reversed())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReverse_NilReservation(t *testing.T) {
	repo, _, close := setupWalletMock(t)
	defer close()

	require.Error(t, repo.Reverse(context.Background(), nil))
}

func TestPurchase_CreditsWallet(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	ctx := context.Background()
	pack := CreditPacks[1]

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, balance_credits, created_at, updated_at")).
		WithArgs(20).
		WillReturnRows(walletRows(7, 20, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets")).
		WithArgs(2+pack.Credits, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO wallet_transactions")).
		WithArgs(20, pack.Credits, pack.AmountCents, "order_0123456789abcdef", 2+pack.Credits).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "credits", "amount_cents", "currency", "gateway", "external_ref", "status", "balance_after", "created_at"}).
			AddRow(1, 20, "purchase", pack.Credits, pack.AmountCents, "USD", "credit_pack", "order_0123456789abcdef", "success", 2+pack.Credits, time.Now()))
	mock.ExpectCommit()

	tr, err := repo.Purchase(ctx, 20, pack, "order_0123456789abcdef")
	require.NoError(t, err)
	require.Equal(t, "purchase", tr.Type)
	require.Equal(t, 2+pack.Credits, tr.BalanceAfter)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactions_DefaultLimit(t *testing.T) {
	repo, mock, close := setupWalletMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_transactions")).
		WithArgs(20, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "credits", "amount_cents", "currency", "gateway", "external_ref", "status", "balance_after", "created_at"}).
			AddRow(1, 20, "debit", 5, nil, "USD", "internal", "interview_abc123", "success", 7, time.Now()))

	txs, err := repo.GetTransactions(context.Background(), 20, 0, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "debit", txs[0].Type)
}
