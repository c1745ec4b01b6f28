package service

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"matka/events"
	"matka/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type bidService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
	validate   *validator.Validate

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewBidService creates a new bid service
func NewBidService(uowFactory UnitOfWorkFactory, clock Clock) BidService {
	return &bidService{
		uowFactory: uowFactory,
		clock:      clock,
		validate:   validator.New(),
		patterns:   make(map[string]*regexp.Regexp),
	}
}

// PlaceBid admits or rejects a bid and, on acceptance, debits the stake and
// persists the pending bid inside one transaction. A debit without a bid
// row, or a bid row without a debit, cannot be committed.
func (s *bidService) PlaceBid(ctx context.Context, input PlaceBidInput, policy models.PolicySnapshot) (*models.BidReceipt, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if input.Amount < policy.MinBidAmount {
		return nil, fmt.Errorf("%w: minimum stake is %d", ErrInvalidStake, policy.MinBidAmount)
	}

	now := s.clock.Now()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	market, err := uow.MarketRepository().GetByID(ctx, input.MarketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}
	if market == nil {
		return nil, ErrMarketNotFound
	}

	// Manual kill-switch is checked first, then the time window; the
	// window math itself is independent of the override.
	if !market.BettingEnabled {
		return nil, ErrBettingDisabled
	}
	if state := ComputeSessionState(market, now); !state.Accepting(input.Session) {
		return nil, ErrMarketClosed
	}

	gameType, err := uow.GameTypeRepository().GetByID(ctx, input.GameTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game type: %w", err)
	}
	if gameType == nil {
		return nil, ErrGameTypeNotFound
	}
	if gameType.Category.NeedsBothPanels() && input.Session != models.SessionClose {
		return nil, ErrWrongSession
	}

	matched, err := s.matchPattern(gameType.DigitPattern, input.Digit)
	if err != nil {
		return nil, fmt.Errorf("bad digit pattern for game type %d: %w", gameType.ID, err)
	}
	if !matched {
		return nil, ErrInvalidDigit
	}

	wallet, err := uow.WalletRepository().GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	bid := &models.Bid{
		UserID:     input.UserID,
		MarketID:   input.MarketID,
		GameTypeID: input.GameTypeID,
		BetDate:    BettingDay(market, now),
		Session:    input.Session,
		Digit:      input.Digit,
		Amount:     input.Amount,
		WinAmount:  decimal.Zero,
		Status:     models.BidStatusPending,
	}
	if err := uow.BidRepository().Create(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}

	txn, err := applyLedger(ctx, uow, wallet.ID, decimal.NewFromInt(input.Amount),
		models.TransactionTypeBid, &bid.ID, fmt.Sprintf("bid on %s", market.Name), policy)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BidPlacedEvent{
		BidID:    bid.ID,
		UserID:   input.UserID,
		MarketID: input.MarketID,
		Session:  input.Session,
		Amount:   input.Amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BidReceipt{
		Bid:        bid,
		NewBalance: txn.BalanceAfter,
	}, nil
}

func (s *bidService) matchPattern(pattern, digit string) (bool, error) {
	s.mu.Lock()
	re, ok := s.patterns[pattern]
	s.mu.Unlock()
	if !ok {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return false, err
		}
		s.mu.Lock()
		s.patterns[pattern] = re
		s.mu.Unlock()
	}
	return re.MatchString(digit), nil
}
