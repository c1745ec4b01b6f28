package repository

import (
	"context"
	"fmt"
	"time"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements the service.TransactionRepository
// interface over the append-only wallet_transactions table. Rows are only
// ever inserted; there is no update or delete path.
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record inserts a ledger row
func (r *TransactionRepository) Record(ctx context.Context, txn *models.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions
		(wallet_id, amount, txn_type, reference_id, status, balance_after, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.WalletID,
		txn.Amount,
		txn.Type,
		txn.ReferenceID,
		txn.Status,
		txn.BalanceAfter,
		txn.Note,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record transaction for wallet %d: %w", txn.WalletID, err)
	}

	return nil
}

// ExistsReference reports whether a successful ledger entry for the
// (type, reference) pair already exists
func (r *TransactionRepository) ExistsReference(ctx context.Context, txnType models.TransactionType, referenceID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM wallet_transactions
			WHERE txn_type = $1 AND reference_id = $2 AND status = 'success'
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, txnType, referenceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check ledger reference: %w", err)
	}

	return exists, nil
}

// GetByWallet returns a wallet's ledger entries, newest first. Ordering by
// id reflects true application order since all writes to one wallet
// serialize on its row lock.
func (r *TransactionRepository) GetByWallet(ctx context.Context, walletID int64, limit int) ([]*models.WalletTransaction, error) {
	query := `
		SELECT id, wallet_id, amount, txn_type, reference_id, status, balance_after, note, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for wallet %d: %w", walletID, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByWalletDateRange returns a wallet's ledger entries in a date range
func (r *TransactionRepository) GetByWalletDateRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.WalletTransaction, error) {
	query := `
		SELECT id, wallet_id, amount, txn_type, reference_id, status, balance_after, note, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY id DESC
	`

	rows, err := r.q.Query(ctx, query, walletID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for wallet %d in range: %w", walletID, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SumSuccessful returns the signed sum of all successful ledger entries for
// a wallet; equals the wallet's balance+bonus at all times
func (r *TransactionRepository) SumSuccessful(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM wallet_transactions
		WHERE wallet_id = $1 AND status = 'success'
	`

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, walletID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for wallet %d: %w", walletID, err)
	}

	return sum, nil
}

func scanTransactions(rows pgx.Rows) ([]*models.WalletTransaction, error) {
	var txns []*models.WalletTransaction
	for rows.Next() {
		var txn models.WalletTransaction
		err := rows.Scan(
			&txn.ID,
			&txn.WalletID,
			&txn.Amount,
			&txn.Type,
			&txn.ReferenceID,
			&txn.Status,
			&txn.BalanceAfter,
			&txn.Note,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}
