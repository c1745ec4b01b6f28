package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"matka/events"
	"matka/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
	bus        *events.Bus
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, clock Clock, bus *events.Bus) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		clock:      clock,
		bus:        bus,
	}
}

// DeclareResult publishes a session's winning panel and then settles the
// session. Re-declaring an already-declared session is rejected.
func (s *settlementService) DeclareResult(ctx context.Context, marketID int64, betDate time.Time, session models.Session, panel string) (*models.SettlementReport, error) {
	if !session.Valid() {
		return nil, fmt.Errorf("%w: unknown session %q", ErrValidation, session)
	}
	if _, err := models.PanelDigit(panel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	market, err := uow.MarketRepository().GetByID(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}
	if market == nil {
		return nil, ErrMarketNotFound
	}

	result, err := uow.ResultRepository().GetOrCreateForUpdate(ctx, marketID, betDate)
	if err != nil {
		return nil, fmt.Errorf("failed to lock result row: %w", err)
	}
	if result.Declared(session) {
		return nil, ErrResultAlreadyDeclared
	}
	if session == models.SessionClose && !result.Declared(models.SessionOpen) {
		return nil, ErrOpenResultMissing
	}

	ok, err := uow.ResultRepository().SetPanel(ctx, result.ID, session, panel)
	if err != nil {
		return nil, fmt.Errorf("failed to declare result: %w", err)
	}
	if !ok {
		return nil, ErrResultAlreadyDeclared
	}

	uow.EventBus().Publish(events.ResultDeclaredEvent{
		MarketID: marketID,
		BetDate:  betDate,
		Session:  session,
		Panel:    panel,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.SettleSession(ctx, marketID, betDate, session)
}

// SettleSession resolves every pending bid for a declared session. Each bid
// is settled in its own transaction: a crash mid-batch leaves only
// fully-paid or fully-untouched bids, and a re-run picks up exactly the
// bids still pending.
func (s *settlementService) SettleSession(ctx context.Context, marketID int64, betDate time.Time, session models.Session) (*models.SettlementReport, error) {
	result, gameTypes, pendingIDs, err := s.loadSettlementContext(ctx, marketID, betDate, session)
	if err != nil {
		return nil, err
	}

	report := &models.SettlementReport{
		MarketID:    marketID,
		BetDate:     betDate,
		Session:     session,
		TotalPayout: decimal.Zero,
	}

	for _, bidID := range pendingIDs {
		if err := s.settleBid(ctx, bidID, result, gameTypes, report); err != nil {
			// One failed bid must not block the rest of the batch; it
			// stays pending and a re-run will retry it.
			log.WithFields(log.Fields{
				"bidID":    bidID,
				"marketID": marketID,
				"session":  session,
			}).WithError(err).Error("Failed to settle bid")
		}
	}

	s.bus.Emit(ctx, events.SettlementCompletedEvent{
		MarketID:    marketID,
		BetDate:     betDate,
		Session:     session,
		Won:         report.Won,
		Lost:        report.Lost,
		TotalPayout: report.TotalPayout,
	})

	log.WithFields(log.Fields{
		"marketID":    marketID,
		"session":     session,
		"won":         report.Won,
		"lost":        report.Lost,
		"totalPayout": report.TotalPayout,
	}).Info("Session settled")

	return report, nil
}

// RefundSession administratively refunds every pending bid of a session,
// crediting each stake back. Used when a market is cancelled or a result
// voided before declaration.
func (s *settlementService) RefundSession(ctx context.Context, marketID int64, betDate time.Time, session models.Session, note string) (*models.SettlementReport, error) {
	if !session.Valid() {
		return nil, fmt.Errorf("%w: unknown session %q", ErrValidation, session)
	}

	pendingIDs, err := s.loadPendingIDs(ctx, marketID, betDate, session)
	if err != nil {
		return nil, err
	}

	report := &models.SettlementReport{
		MarketID:    marketID,
		BetDate:     betDate,
		Session:     session,
		TotalPayout: decimal.Zero,
	}

	for _, bidID := range pendingIDs {
		if err := s.refundBid(ctx, bidID, note, report); err != nil {
			log.WithFields(log.Fields{
				"bidID":    bidID,
				"marketID": marketID,
				"session":  session,
			}).WithError(err).Error("Failed to refund bid")
		}
	}

	log.WithFields(log.Fields{
		"marketID": marketID,
		"session":  session,
		"refunded": report.Refunded,
	}).Info("Session refunded")

	return report, nil
}

// loadSettlementContext reads the declared result, the game type catalog
// and the pending bid ids in one read-only unit of work
func (s *settlementService) loadSettlementContext(ctx context.Context, marketID int64, betDate time.Time, session models.Session) (*models.Result, map[int64]*models.GameType, []int64, error) {
	if !session.Valid() {
		return nil, nil, nil, fmt.Errorf("%w: unknown session %q", ErrValidation, session)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	result, err := uow.ResultRepository().GetByMarketDate(ctx, marketID, betDate)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get result: %w", err)
	}
	if result == nil || !result.Declared(session) {
		return nil, nil, nil, ErrResultNotDeclared
	}

	allTypes, err := uow.GameTypeRepository().GetAll(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get game types: %w", err)
	}
	gameTypes := make(map[int64]*models.GameType, len(allTypes))
	for _, gt := range allTypes {
		gameTypes[gt.ID] = gt
	}

	pendingIDs, err := uow.BidRepository().GetPendingIDs(ctx, marketID, betDate, session)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get pending bids: %w", err)
	}

	return result, gameTypes, pendingIDs, nil
}

func (s *settlementService) loadPendingIDs(ctx context.Context, marketID int64, betDate time.Time, session models.Session) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pendingIDs, err := uow.BidRepository().GetPendingIDs(ctx, marketID, betDate, session)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bids: %w", err)
	}
	return pendingIDs, nil
}

// settleBid resolves a single bid in its own transaction: status flip and
// payout commit together or not at all
func (s *settlementService) settleBid(ctx context.Context, bidID int64, result *models.Result, gameTypes map[int64]*models.GameType, report *models.SettlementReport) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bid, err := uow.BidRepository().GetByIDForUpdate(ctx, bidID)
	if err != nil {
		return fmt.Errorf("failed to lock bid: %w", err)
	}
	if bid == nil || bid.Status != models.BidStatusPending {
		// Already settled by a concurrent or earlier run
		return nil
	}

	gameType, ok := gameTypes[bid.GameTypeID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrGameTypeNotFound, bid.GameTypeID)
	}

	matched, err := MatchBid(gameType.Category, bid.Session, result, bid.Digit)
	if err != nil {
		return fmt.Errorf("failed to match bid %d: %w", bid.ID, err)
	}

	now := s.clock.Now()
	status := models.BidStatusLost
	winAmount := decimal.Zero
	if matched {
		status = models.BidStatusWon
		winAmount = gameType.Rate.Mul(decimal.NewFromInt(bid.Amount))
	}

	flipped, err := uow.BidRepository().MarkSettled(ctx, bid.ID, status, winAmount, now)
	if err != nil {
		return fmt.Errorf("failed to mark bid settled: %w", err)
	}
	if !flipped {
		return nil
	}

	if matched {
		wallet, err := uow.WalletRepository().GetByUserID(ctx, bid.UserID)
		if err != nil {
			return fmt.Errorf("failed to get wallet: %w", err)
		}
		if wallet == nil {
			return ErrWalletNotFound
		}

		// Winners are paid regardless of bonus policy; pass a zero-value
		// snapshot since credits ignore it.
		_, err = applyLedger(ctx, uow, wallet.ID, winAmount, models.TransactionTypeWin, &bid.ID, "session win payout", models.PolicySnapshot{})
		if err != nil {
			if errors.Is(err, ErrDuplicateTransaction) {
				// Payout already exists from an earlier partial run; commit
				// the status flip so the bid converges to settled.
				log.WithField("bidID", bid.ID).Warn("Win payout already recorded, skipping duplicate")
			} else {
				return err
			}
		}
	}

	uow.EventBus().Publish(events.BidSettledEvent{
		BidID:     bid.ID,
		UserID:    bid.UserID,
		Status:    status,
		WinAmount: winAmount,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if matched {
		report.Won++
		report.TotalPayout = report.TotalPayout.Add(winAmount)
	} else {
		report.Lost++
	}
	return nil
}

// refundBid returns a single bid's stake in its own transaction
func (s *settlementService) refundBid(ctx context.Context, bidID int64, note string, report *models.SettlementReport) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bid, err := uow.BidRepository().GetByIDForUpdate(ctx, bidID)
	if err != nil {
		return fmt.Errorf("failed to lock bid: %w", err)
	}
	if bid == nil || bid.Status != models.BidStatusPending {
		return nil
	}

	flipped, err := uow.BidRepository().MarkSettled(ctx, bid.ID, models.BidStatusRefunded, decimal.Zero, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to mark bid refunded: %w", err)
	}
	if !flipped {
		return nil
	}

	wallet, err := uow.WalletRepository().GetByUserID(ctx, bid.UserID)
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return ErrWalletNotFound
	}

	_, err = applyLedger(ctx, uow, wallet.ID, decimal.NewFromInt(bid.Amount), models.TransactionTypeRefund, &bid.ID, note, models.PolicySnapshot{})
	if err != nil {
		if errors.Is(err, ErrDuplicateTransaction) {
			log.WithField("bidID", bid.ID).Warn("Refund already recorded, skipping duplicate")
		} else {
			return err
		}
	}

	uow.EventBus().Publish(events.BidSettledEvent{
		BidID:     bid.ID,
		UserID:    bid.UserID,
		Status:    models.BidStatusRefunded,
		WinAmount: decimal.Zero,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	report.Refunded++
	return nil
}
