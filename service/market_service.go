package service

import (
	"context"
	"fmt"

	"matka/models"
)

type marketService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
}

// NewMarketService creates a new market service
func NewMarketService(uowFactory UnitOfWorkFactory, clock Clock) MarketService {
	return &marketService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (s *marketService) SessionState(ctx context.Context, marketID int64) (models.SessionState, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return models.SessionState{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	market, err := uow.MarketRepository().GetByID(ctx, marketID)
	if err != nil {
		return models.SessionState{}, fmt.Errorf("failed to get market: %w", err)
	}
	if market == nil {
		return models.SessionState{}, ErrMarketNotFound
	}

	return ComputeSessionState(market, s.clock.Now()), nil
}

func (s *marketService) ListMarkets(ctx context.Context) ([]*models.MarketStatus, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	markets, err := uow.MarketRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}

	now := s.clock.Now()
	statuses := make([]*models.MarketStatus, 0, len(markets))
	for _, market := range markets {
		statuses = append(statuses, &models.MarketStatus{
			Market: market,
			State:  ComputeSessionState(market, now),
		})
	}

	return statuses, nil
}

func (s *marketService) CreateMarket(ctx context.Context, name, marketType, openTime, closeTime string) (*models.Market, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: market name cannot be empty", ErrValidation)
	}
	openMinute, err := models.ParseMinuteOfDay(openTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	closeMinute, err := models.ParseMinuteOfDay(closeTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	market := &models.Market{
		Name:           name,
		Type:           marketType,
		OpenMinute:     openMinute,
		CloseMinute:    closeMinute,
		BettingEnabled: true,
	}
	if err := uow.MarketRepository().Create(ctx, market); err != nil {
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return market, nil
}

func (s *marketService) UpdateMarketWindow(ctx context.Context, marketID int64, openTime, closeTime string) error {
	openMinute, err := models.ParseMinuteOfDay(openTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	closeMinute, err := models.ParseMinuteOfDay(closeTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return s.updateMarket(ctx, marketID, func(market *models.Market) {
		market.OpenMinute = openMinute
		market.CloseMinute = closeMinute
	})
}

func (s *marketService) SetBettingEnabled(ctx context.Context, marketID int64, enabled bool) error {
	return s.updateMarket(ctx, marketID, func(market *models.Market) {
		market.BettingEnabled = enabled
	})
}

func (s *marketService) updateMarket(ctx context.Context, marketID int64, mutate func(*models.Market)) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	market, err := uow.MarketRepository().GetByID(ctx, marketID)
	if err != nil {
		return fmt.Errorf("failed to get market: %w", err)
	}
	if market == nil {
		return ErrMarketNotFound
	}

	mutate(market)

	if err := uow.MarketRepository().Update(ctx, market); err != nil {
		return fmt.Errorf("failed to update market: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
