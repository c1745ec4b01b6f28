package service

import (
	"context"
	"fmt"
	"time"

	"matka/models"

	"github.com/shopspring/decimal"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

func (s *ledgerService) ApplyTransaction(ctx context.Context, walletID int64, amount decimal.Decimal, txnType models.TransactionType, referenceID *int64, note string, policy models.PolicySnapshot) (*models.WalletTransaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	txn, err := applyLedger(ctx, uow, walletID, amount, txnType, referenceID, note, policy)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

func (s *ledgerService) Statement(ctx context.Context, walletID int64, limit int) ([]*models.WalletTransaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txns, err := uow.TransactionRepository().GetByWallet(ctx, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet statement: %w", err)
	}

	return txns, nil
}

func (s *ledgerService) StatementRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.WalletTransaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txns, err := uow.TransactionRepository().GetByWalletDateRange(ctx, walletID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet statement: %w", err)
	}

	return txns, nil
}
