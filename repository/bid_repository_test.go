package repository

import (
	"context"
	"testing"
	"time"

	"matka/models"
	"matka/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidRepository_PendingLifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := NewUserRepository(testDB.DB)
	marketRepo := NewMarketRepository(testDB.DB)
	gameTypeRepo := NewGameTypeRepository(testDB.DB)
	repo := NewBidRepository(testDB.DB)

	user, err := userRepo.Create(ctx, "bidder", nil)
	require.NoError(t, err)

	market := testutil.CreateTestMarket("kalyan")
	require.NoError(t, marketRepo.Create(ctx, market))

	gameType := testutil.CreateTestGameType("single", models.CategorySingle, "9.5")
	require.NoError(t, gameTypeRepo.Create(ctx, gameType))

	betDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		bid := testutil.CreateTestBid(user.ID, market.ID, gameType.ID, betDate)
		require.NoError(t, repo.Create(ctx, bid))

		assert.NotZero(t, bid.ID)
		assert.False(t, bid.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, bid.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.BidStatusPending, got.Status)
		assert.Nil(t, got.SettledAt)
	})

	t.Run("pending ids filter by session and date", func(t *testing.T) {
		closeBid := testutil.CreateTestBid(user.ID, market.ID, gameType.ID, betDate)
		closeBid.Session = models.SessionClose
		require.NoError(t, repo.Create(ctx, closeBid))

		otherDay := testutil.CreateTestBid(user.ID, market.ID, gameType.ID, betDate.AddDate(0, 0, 1))
		require.NoError(t, repo.Create(ctx, otherDay))

		ids, err := repo.GetPendingIDs(ctx, market.ID, betDate, models.SessionClose)
		require.NoError(t, err)
		assert.Equal(t, []int64{closeBid.ID}, ids)
	})

	t.Run("mark settled flips pending exactly once", func(t *testing.T) {
		bid := testutil.CreateTestBid(user.ID, market.ID, gameType.ID, betDate)
		require.NoError(t, repo.Create(ctx, bid))

		settledAt := time.Now().UTC().Truncate(time.Second)
		winAmount := decimal.RequireFromString("950")

		ok, err := repo.MarkSettled(ctx, bid.ID, models.BidStatusWon, winAmount, settledAt)
		require.NoError(t, err)
		assert.True(t, ok)

		// A retry must be a no-op so settlement can resume after a crash
		ok, err = repo.MarkSettled(ctx, bid.ID, models.BidStatusLost, decimal.Zero, settledAt)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := repo.GetByID(ctx, bid.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BidStatusWon, got.Status)
		assert.True(t, got.WinAmount.Equal(winAmount))
		require.NotNil(t, got.SettledAt)
	})

	t.Run("settled bids drop out of pending ids", func(t *testing.T) {
		ids, err := repo.GetPendingIDs(ctx, market.ID, betDate, models.SessionOpen)
		require.NoError(t, err)

		for _, id := range ids {
			ok, err := repo.MarkSettled(ctx, id, models.BidStatusLost, decimal.Zero, time.Now())
			require.NoError(t, err)
			assert.True(t, ok)
		}

		ids, err = repo.GetPendingIDs(ctx, market.ID, betDate, models.SessionOpen)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
