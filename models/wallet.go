package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdraw    TransactionType = "withdraw"
	TransactionTypeBid         TransactionType = "bid"
	TransactionTypeWin         TransactionType = "win"
	TransactionTypeBonus       TransactionType = "bonus"
	TransactionTypeRefund      TransactionType = "refund"
	TransactionTypeAdminAdjust TransactionType = "admin_adjust"
)

// Debit reports whether the type moves money out of the wallet
func (t TransactionType) Debit() bool {
	return t == TransactionTypeBid || t == TransactionTypeWithdraw
}

// TransactionStatus is the final disposition of a ledger entry
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
	TransactionStatusPending TransactionStatus = "pending"
)

// Wallet is a user's money account. Balance and Bonus are mutated only
// through ledger operations, never written directly.
type Wallet struct {
	ID        int64           `db:"id"`
	UserID    int64           `db:"user_id"`
	Balance   decimal.Decimal `db:"balance"`
	Bonus     decimal.Decimal `db:"bonus"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Spendable returns the funds usable for a debit under the given policy
func (w *Wallet) Spendable(bonusSpendable bool) decimal.Decimal {
	if bonusSpendable {
		return w.Balance.Add(w.Bonus)
	}
	return w.Balance
}

// WalletTransaction is an immutable, append-only ledger row. Amount is
// signed: negative for debits, positive for credits. The sum of all
// success rows for a wallet equals its current balance+bonus.
type WalletTransaction struct {
	ID           int64             `db:"id"`
	WalletID     int64             `db:"wallet_id"`
	Amount       decimal.Decimal   `db:"amount"`
	Type         TransactionType   `db:"txn_type"`
	ReferenceID  *int64            `db:"reference_id"`
	Status       TransactionStatus `db:"status"`
	BalanceAfter decimal.Decimal   `db:"balance_after"`
	Note         string            `db:"note"`
	CreatedAt    time.Time         `db:"created_at"`
}
