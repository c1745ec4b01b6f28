package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"matka/events"
	"matka/models"
	"matka/repository/testutil"
	"matka/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepository_CreateForUser(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	user, err := userRepo.Create(ctx, "wallet_owner", nil)
	require.NoError(t, err)

	t.Run("new wallet starts empty", func(t *testing.T) {
		wallet, err := repo.CreateForUser(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, wallet)

		assert.NotZero(t, wallet.ID)
		assert.Equal(t, user.ID, wallet.UserID)
		assert.True(t, wallet.Balance.IsZero())
		assert.True(t, wallet.Bonus.IsZero())
	})

	t.Run("one wallet per user", func(t *testing.T) {
		_, err := repo.CreateForUser(ctx, user.ID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unique")
	})

	t.Run("lookup by user id", func(t *testing.T) {
		wallet, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, wallet)
		assert.Equal(t, user.ID, wallet.UserID)
	})

	t.Run("missing wallet returns nil", func(t *testing.T) {
		wallet, err := repo.GetByUserID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, wallet)
	})
}

func TestWalletRepository_CreditDebit(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	user, err := userRepo.Create(ctx, "ledger_user", nil)
	require.NoError(t, err)
	wallet, err := repo.CreateForUser(ctx, user.ID)
	require.NoError(t, err)

	t.Run("credit balance and bonus", func(t *testing.T) {
		err := repo.Credit(ctx, wallet.ID, decimal.NewFromInt(500), decimal.NewFromInt(50))
		require.NoError(t, err)

		got, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(500)), "balance = %s", got.Balance)
		assert.True(t, got.Bonus.Equal(decimal.NewFromInt(50)), "bonus = %s", got.Bonus)
	})

	t.Run("debit within funds", func(t *testing.T) {
		err := repo.Debit(ctx, wallet.ID, decimal.NewFromInt(200), decimal.NewFromInt(10))
		require.NoError(t, err)

		got, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(300)), "balance = %s", got.Balance)
		assert.True(t, got.Bonus.Equal(decimal.NewFromInt(40)), "bonus = %s", got.Bonus)
	})

	t.Run("overdraw is rejected and leaves the wallet untouched", func(t *testing.T) {
		err := repo.Debit(ctx, wallet.ID, decimal.NewFromInt(10000), decimal.Zero)
		assert.True(t, errors.Is(err, service.ErrInsufficientFunds), "got %v", err)

		got, err := repo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(300)))
		assert.True(t, got.Bonus.Equal(decimal.NewFromInt(40)))
	})

	t.Run("bonus overdraw is rejected independently", func(t *testing.T) {
		err := repo.Debit(ctx, wallet.ID, decimal.Zero, decimal.NewFromInt(100))
		assert.True(t, errors.Is(err, service.ErrInsufficientFunds), "got %v", err)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		err := repo.Credit(ctx, 999999, decimal.NewFromInt(1), decimal.Zero)
		assert.True(t, errors.Is(err, service.ErrWalletNotFound), "got %v", err)

		err = repo.Debit(ctx, 999999, decimal.NewFromInt(1), decimal.Zero)
		assert.True(t, errors.Is(err, service.ErrWalletNotFound), "got %v", err)
	})
}

// Races goroutines through the full unit-of-work debit path on a single
// wallet. The row lock plus the guarded UPDATE must serialize the debits so
// the wallet can never go negative, and the ledger must keep summing to the
// live balance.
func TestWalletRepository_ConcurrentDebits(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	walletRepo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	user, err := userRepo.Create(ctx, "racing_user", nil)
	require.NoError(t, err)
	wallet, err := walletRepo.CreateForUser(ctx, user.ID)
	require.NoError(t, err)

	ledger := service.NewLedgerService(NewUnitOfWorkFactory(testDB.DB, events.NewBus()))
	policy := models.PolicySnapshot{BonusSpendable: false}

	_, err = ledger.ApplyTransaction(ctx, wallet.ID, decimal.NewFromInt(300),
		models.TransactionTypeDeposit, nil, "seed", policy)
	require.NoError(t, err)

	t.Run("two overdrawing debits admit exactly one", func(t *testing.T) {
		// Two simultaneous 200 debits against a 300 balance: whichever takes
		// the row lock second must see 100 left and fail the funds check
		results := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.ApplyTransaction(ctx, wallet.ID, decimal.NewFromInt(200),
					models.TransactionTypeWithdraw, nil, "concurrent debit", policy)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.True(t, errors.Is(err, service.ErrInsufficientFunds), "got %v", err)
			}
		}
		assert.Equal(t, 1, succeeded)

		got, err := walletRepo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)), "balance = %s", got.Balance)
	})

	t.Run("ledger sums to the balance after concurrent credits", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.ApplyTransaction(ctx, wallet.ID, decimal.NewFromInt(50),
					models.TransactionTypeDeposit, nil, "concurrent credit", policy)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := walletRepo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(500)), "balance = %s", got.Balance)

		txnRepo := NewTransactionRepository(testDB.DB)
		sum, err := txnRepo.SumSuccessful(ctx, wallet.ID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(got.Balance.Add(got.Bonus)), "sum = %s", sum)
	})
}
