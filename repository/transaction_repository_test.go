package repository

import (
	"context"
	"testing"

	"matka/models"
	"matka/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Ledger(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := NewUserRepository(testDB.DB)
	walletRepo := NewWalletRepository(testDB.DB)
	repo := NewTransactionRepository(testDB.DB)

	user, err := userRepo.Create(ctx, "statement_user", nil)
	require.NoError(t, err)
	wallet, err := walletRepo.CreateForUser(ctx, user.ID)
	require.NoError(t, err)

	record := func(amount string, txnType models.TransactionType, refID *int64, after string) *models.WalletTransaction {
		txn := &models.WalletTransaction{
			WalletID:     wallet.ID,
			Amount:       decimal.RequireFromString(amount),
			Type:         txnType,
			ReferenceID:  refID,
			Status:       models.TransactionStatusSuccess,
			BalanceAfter: decimal.RequireFromString(after),
		}
		require.NoError(t, repo.Record(ctx, txn))
		return txn
	}

	depositID := int64(7)
	bidID := int64(11)

	record("1000", models.TransactionTypeDeposit, &depositID, "1000")
	record("-100", models.TransactionTypeBid, &bidID, "900")
	record("950", models.TransactionTypeWin, &bidID, "1850")

	t.Run("reference lookup is scoped to the transaction type", func(t *testing.T) {
		exists, err := repo.ExistsReference(ctx, models.TransactionTypeBid, bidID)
		require.NoError(t, err)
		assert.True(t, exists)

		// The same id under another type is a different operation
		exists, err = repo.ExistsReference(ctx, models.TransactionTypeRefund, bidID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate reference rejected by the database", func(t *testing.T) {
		txn := &models.WalletTransaction{
			WalletID:     wallet.ID,
			Amount:       decimal.RequireFromString("950"),
			Type:         models.TransactionTypeWin,
			ReferenceID:  &bidID,
			Status:       models.TransactionStatusSuccess,
			BalanceAfter: decimal.RequireFromString("2800"),
		}
		err := repo.Record(ctx, txn)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "idx_wallet_txn_reference")
	})

	t.Run("statement is newest first", func(t *testing.T) {
		txns, err := repo.GetByWallet(ctx, wallet.ID, 10)
		require.NoError(t, err)
		require.Len(t, txns, 3)
		assert.Equal(t, models.TransactionTypeWin, txns[0].Type)
		assert.Equal(t, models.TransactionTypeDeposit, txns[2].Type)
	})

	t.Run("limit caps the statement", func(t *testing.T) {
		txns, err := repo.GetByWallet(ctx, wallet.ID, 2)
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})

	t.Run("signed sum matches the running balance", func(t *testing.T) {
		sum, err := repo.SumSuccessful(ctx, wallet.ID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.RequireFromString("1850")), "sum = %s", sum)
	})
}
