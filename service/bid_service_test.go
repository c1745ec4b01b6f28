package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"matka/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type bidServiceFixture struct {
	uow        *MockUnitOfWork
	factory    *MockUnitOfWorkFactory
	marketRepo *MockMarketRepository
	gameRepo   *MockGameTypeRepository
	walletRepo *MockWalletRepository
	txnRepo    *MockTransactionRepository
	bidRepo    *MockBidRepository
}

func newBidServiceFixture() *bidServiceFixture {
	f := &bidServiceFixture{
		uow:        new(MockUnitOfWork),
		factory:    new(MockUnitOfWorkFactory),
		marketRepo: new(MockMarketRepository),
		gameRepo:   new(MockGameTypeRepository),
		walletRepo: new(MockWalletRepository),
		txnRepo:    new(MockTransactionRepository),
		bidRepo:    new(MockBidRepository),
	}
	f.uow.SetRepositories(nil, f.walletRepo, f.txnRepo, f.marketRepo, f.gameRepo, f.bidRepo, nil, nil, nil)
	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Commit").Return(nil).Maybe()
	f.uow.On("Rollback").Return(nil)
	return f
}

func dayMarket() *models.Market {
	return &models.Market{
		ID:             5,
		Name:           "kalyan",
		Type:           "day",
		OpenMinute:     600, // 10:00
		CloseMinute:    720, // 12:00
		BettingEnabled: true,
	}
}

func singleGameType() *models.GameType {
	return &models.GameType{
		ID:           2,
		Name:         "single",
		Category:     models.CategorySingle,
		Rate:         decimal.RequireFromString("9.5"),
		DigitPattern: `^[0-9]$`,
	}
}

func bidInput() PlaceBidInput {
	return PlaceBidInput{
		UserID:     42,
		MarketID:   5,
		GameTypeID: 2,
		Session:    models.SessionOpen,
		Digit:      "7",
		Amount:     100,
	}
}

// 09:00, one hour before the open-session cutoff
var beforeOpen = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestBidService_PlaceBid_Accepted(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	service := NewBidService(f.factory, NewFixedClock(beforeOpen))

	f.marketRepo.On("GetByID", ctx, int64(5)).Return(dayMarket(), nil)
	f.gameRepo.On("GetByID", ctx, int64(2)).Return(singleGameType(), nil)
	f.walletRepo.On("GetByUserID", ctx, int64(42)).Return(testWallet("500", "0"), nil)
	f.walletRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(testWallet("500", "0"), nil)

	f.bidRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Bid) bool {
		return b.UserID == 42 &&
			b.Session == models.SessionOpen &&
			b.Digit == "7" &&
			b.Amount == 100 &&
			b.Status == models.BidStatusPending &&
			b.BetDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Bid).ID = 11
	})

	f.txnRepo.On("ExistsReference", ctx, models.TransactionTypeBid, int64(11)).Return(false, nil)
	f.walletRepo.On("Debit", ctx, int64(1), decEq(100), decEq(0)).Return(nil)
	f.txnRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.WalletTransaction) bool {
		return txn.Amount.Equal(decimal.NewFromInt(-100)) &&
			txn.Type == models.TransactionTypeBid &&
			*txn.ReferenceID == 11 &&
			txn.BalanceAfter.Equal(decimal.NewFromInt(400))
	})).Return(nil)

	receipt, err := service.PlaceBid(ctx, bidInput(), models.PolicySnapshot{MinBidAmount: 10})

	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, int64(11), receipt.Bid.ID)
	assert.True(t, receipt.NewBalance.Equal(decimal.NewFromInt(400)))

	f.uow.AssertCalled(t, "Commit")
	f.marketRepo.AssertExpectations(t)
	f.bidRepo.AssertExpectations(t)
	f.walletRepo.AssertExpectations(t)
	f.txnRepo.AssertExpectations(t)
}

func TestBidService_PlaceBid_OvernightPastMidnight(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	// 01:00 on March 3rd, inside the close window of the overnight market
	// that opened on the evening of March 2nd
	oneAM := time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC)
	service := NewBidService(f.factory, NewFixedClock(oneAM))

	nightMarket := &models.Market{
		ID:             6,
		Name:           "madhur night",
		Type:           "night",
		OpenMinute:     1320, // 22:00
		CloseMinute:    120,  // 02:00
		BettingEnabled: true,
	}

	f.marketRepo.On("GetByID", ctx, int64(6)).Return(nightMarket, nil)
	f.gameRepo.On("GetByID", ctx, int64(2)).Return(singleGameType(), nil)
	f.walletRepo.On("GetByUserID", ctx, int64(42)).Return(testWallet("500", "0"), nil)
	f.walletRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(testWallet("500", "0"), nil)

	// The bid must be stamped with March 2nd, the day the session opened,
	// so close-session settlement of that day picks it up
	f.bidRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Bid) bool {
		return b.Session == models.SessionClose &&
			b.BetDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Bid).ID = 13
	})

	f.txnRepo.On("ExistsReference", ctx, models.TransactionTypeBid, int64(13)).Return(false, nil)
	f.walletRepo.On("Debit", ctx, int64(1), decEq(100), decEq(0)).Return(nil)
	f.txnRepo.On("Record", ctx, mock.Anything).Return(nil)

	input := bidInput()
	input.MarketID = 6
	input.Session = models.SessionClose

	receipt, err := service.PlaceBid(ctx, input, models.PolicySnapshot{MinBidAmount: 10})

	require.NoError(t, err)
	require.NotNil(t, receipt)
	f.bidRepo.AssertExpectations(t)
}

func TestBidService_PlaceBid_WindowClosed(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	// 11:00 is past the open cutoff but inside the close window
	elevenAM := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	service := NewBidService(f.factory, NewFixedClock(elevenAM))

	f.marketRepo.On("GetByID", ctx, int64(5)).Return(dayMarket(), nil)

	input := bidInput()
	_, err := service.PlaceBid(ctx, input, models.PolicySnapshot{MinBidAmount: 10})
	assert.True(t, errors.Is(err, ErrMarketClosed), "got %v", err)

	f.bidRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.walletRepo.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBidService_PlaceBid_KillSwitchBeatsWindow(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	service := NewBidService(f.factory, NewFixedClock(beforeOpen))

	market := dayMarket()
	market.BettingEnabled = false
	f.marketRepo.On("GetByID", ctx, int64(5)).Return(market, nil)

	// The window would accept; the kill-switch still rejects
	_, err := service.PlaceBid(ctx, bidInput(), models.PolicySnapshot{MinBidAmount: 10})
	assert.True(t, errors.Is(err, ErrBettingDisabled), "got %v", err)
}

func TestBidService_PlaceBid_StakeBelowMinimum(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	service := NewBidService(f.factory, NewFixedClock(beforeOpen))

	input := bidInput()
	input.Amount = 5
	_, err := service.PlaceBid(ctx, input, models.PolicySnapshot{MinBidAmount: 10})
	assert.True(t, errors.Is(err, ErrInvalidStake), "got %v", err)

	f.factory.AssertNotCalled(t, "Create")
}

func TestBidService_PlaceBid_InvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	service := NewBidService(f.factory, NewFixedClock(beforeOpen))

	input := bidInput()
	input.Session = "midday"
	_, err := service.PlaceBid(ctx, input, models.PolicySnapshot{MinBidAmount: 10})
	assert.True(t, errors.Is(err, ErrValidation), "got %v", err)

	input = bidInput()
	input.UserID = 0
	_, err = service.PlaceBid(ctx, input, models.PolicySnapshot{MinBidAmount: 10})
	assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
}

func TestBidService_PlaceBid_DigitPattern(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	service := NewBidService(f.factory, NewFixedClock(beforeOpen))

	f.marketRepo.On("GetByID", ctx, int64(5)).Return(dayMarket(), nil)
	f.gameRepo.On("GetByID", ctx, int64(2)).Return(singleGameType(), nil)

	input := bidInput()
	input.Digit = "77"
	_, err := service.PlaceBid(ctx, input, models.PolicySnapshot{MinBidAmount: 10})
	assert.True(t, errors.Is(err, ErrInvalidDigit), "got %v", err)
}

func TestBidService_PlaceBid_JodiRequiresCloseSession(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	service := NewBidService(f.factory, NewFixedClock(beforeOpen))

	jodi := &models.GameType{
		ID:           3,
		Name:         "jodi",
		Category:     models.CategoryJodi,
		Rate:         decimal.RequireFromString("95"),
		DigitPattern: `^[0-9]{2}$`,
	}

	f.marketRepo.On("GetByID", ctx, int64(5)).Return(dayMarket(), nil)
	f.gameRepo.On("GetByID", ctx, int64(3)).Return(jodi, nil)

	input := bidInput()
	input.GameTypeID = 3
	input.Session = models.SessionOpen
	input.Digit = "12"
	_, err := service.PlaceBid(ctx, input, models.PolicySnapshot{MinBidAmount: 10})
	assert.True(t, errors.Is(err, ErrWrongSession), "got %v", err)
}

func TestBidService_PlaceBid_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	service := NewBidService(f.factory, NewFixedClock(beforeOpen))

	f.marketRepo.On("GetByID", ctx, int64(5)).Return(dayMarket(), nil)
	f.gameRepo.On("GetByID", ctx, int64(2)).Return(singleGameType(), nil)
	f.walletRepo.On("GetByUserID", ctx, int64(42)).Return(testWallet("50", "0"), nil)
	f.walletRepo.On("GetByIDForUpdate", ctx, int64(1)).Return(testWallet("50", "0"), nil)
	f.bidRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Bid).ID = 12
	})
	f.txnRepo.On("ExistsReference", ctx, models.TransactionTypeBid, int64(12)).Return(false, nil)

	_, err := service.PlaceBid(ctx, bidInput(), models.PolicySnapshot{MinBidAmount: 10})
	assert.True(t, errors.Is(err, ErrInsufficientFunds), "got %v", err)

	// The stake was never debited and the transaction never committed, so
	// the bid row rolls back together with everything else
	f.uow.AssertNotCalled(t, "Commit")
	f.walletRepo.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBidService_PlaceBid_UnknownMarket(t *testing.T) {
	ctx := context.Background()
	f := newBidServiceFixture()

	service := NewBidService(f.factory, NewFixedClock(beforeOpen))

	f.marketRepo.On("GetByID", ctx, int64(5)).Return(nil, nil)

	_, err := service.PlaceBid(ctx, bidInput(), models.PolicySnapshot{MinBidAmount: 10})
	assert.True(t, errors.Is(err, ErrMarketNotFound), "got %v", err)
}
