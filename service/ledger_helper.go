package service

import (
	"context"
	"fmt"

	"matka/events"
	"matka/models"

	"github.com/shopspring/decimal"
)

// applyLedger is the single entry point for every balance change in the
// system. It locks the wallet row, enforces the funds and idempotence
// guards, mutates the balance/bonus columns and appends the ledger row, all
// inside the caller's unit of work so the mutation and its record commit or
// roll back together.
//
// amount is a positive magnitude; the row's signed amount is derived from
// the transaction type. referenceID, when set, makes the operation
// idempotent per (type, reference): a second application returns
// ErrDuplicateTransaction and changes nothing.
func applyLedger(ctx context.Context, uow UnitOfWork, walletID int64, amount decimal.Decimal, txnType models.TransactionType, referenceID *int64, note string, policy models.PolicySnapshot) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidStake, amount)
	}

	wallet, err := uow.WalletRepository().GetByIDForUpdate(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet %d: %w", walletID, err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	if referenceID != nil {
		exists, err := uow.TransactionRepository().ExistsReference(ctx, txnType, *referenceID)
		if err != nil {
			return nil, fmt.Errorf("failed to check ledger reference: %w", err)
		}
		if exists {
			return nil, ErrDuplicateTransaction
		}
	}

	total := wallet.Balance.Add(wallet.Bonus)
	signed := amount

	if txnType.Debit() {
		if wallet.Spendable(policy.BonusSpendable).LessThan(amount) {
			return nil, ErrInsufficientFunds
		}
		fromBalance := decimal.Min(wallet.Balance, amount)
		fromBonus := amount.Sub(fromBalance)
		if err := uow.WalletRepository().Debit(ctx, walletID, fromBalance, fromBonus); err != nil {
			return nil, fmt.Errorf("failed to debit wallet %d: %w", walletID, err)
		}
		signed = amount.Neg()
	} else {
		toBalance, toBonus := amount, decimal.Zero
		if txnType == models.TransactionTypeBonus {
			toBalance, toBonus = decimal.Zero, amount
		}
		if err := uow.WalletRepository().Credit(ctx, walletID, toBalance, toBonus); err != nil {
			return nil, fmt.Errorf("failed to credit wallet %d: %w", walletID, err)
		}
	}

	txn := &models.WalletTransaction{
		WalletID:     walletID,
		Amount:       signed,
		Type:         txnType,
		ReferenceID:  referenceID,
		Status:       models.TransactionStatusSuccess,
		BalanceAfter: total.Add(signed),
		Note:         note,
	}
	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		WalletID:        walletID,
		UserID:          wallet.UserID,
		Amount:          signed,
		BalanceAfter:    txn.BalanceAfter,
		TransactionType: txnType,
	})

	return txn, nil
}
