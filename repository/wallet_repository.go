package repository

import (
	"context"
	"fmt"

	"matka/database"
	"matka/models"
	"matka/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository implements the service.WalletRepository interface
type WalletRepository struct {
	q queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// CreateForUser creates an empty wallet for a user
func (r *WalletRepository) CreateForUser(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		RETURNING id, user_id, balance, bonus, created_at, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.Bonus,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}

	return &wallet, nil
}

// GetByUserID retrieves a user's wallet
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `
		SELECT id, user_id, balance, bonus, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`
	return r.scanOne(ctx, query, userID)
}

// GetByIDForUpdate retrieves a wallet and takes its row lock for the rest
// of the transaction. Every ledger mutation goes through this lock, which
// serializes all operations on one wallet while leaving other wallets free.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, walletID int64) (*models.Wallet, error) {
	query := `
		SELECT id, user_id, balance, bonus, created_at, updated_at
		FROM wallets
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanOne(ctx, query, walletID)
}

func (r *WalletRepository) scanOne(ctx context.Context, query string, arg any) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.Bonus,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// Credit adds funds to the balance and/or bonus columns
func (r *WalletRepository) Credit(ctx context.Context, walletID int64, toBalance, toBonus decimal.Decimal) error {
	if toBalance.IsNegative() || toBonus.IsNegative() {
		return fmt.Errorf("credit amounts must not be negative")
	}

	query := `
		UPDATE wallets
		SET balance = balance + $1, bonus = bonus + $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, toBalance, toBonus, walletID)
	if err != nil {
		return fmt.Errorf("failed to credit wallet %d: %w", walletID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrWalletNotFound
	}

	return nil
}

// Debit removes funds from the balance and/or bonus columns. The guard in
// the WHERE clause makes the check and the mutation one atomic statement;
// zero rows affected means the funds were not there.
func (r *WalletRepository) Debit(ctx context.Context, walletID int64, fromBalance, fromBonus decimal.Decimal) error {
	if fromBalance.IsNegative() || fromBonus.IsNegative() {
		return fmt.Errorf("debit amounts must not be negative")
	}

	query := `
		UPDATE wallets
		SET balance = balance - $1, bonus = bonus - $2, updated_at = NOW()
		WHERE id = $3 AND balance >= $1 AND bonus >= $2
	`

	result, err := r.q.Exec(ctx, query, fromBalance, fromBonus, walletID)
	if err != nil {
		return fmt.Errorf("failed to debit wallet %d: %w", walletID, err)
	}
	if result.RowsAffected() == 0 {
		wallet, err := r.GetByIDForUpdate(ctx, walletID)
		if err != nil {
			return fmt.Errorf("failed to check wallet: %w", err)
		}
		if wallet == nil {
			return service.ErrWalletNotFound
		}
		return service.ErrInsufficientFunds
	}

	return nil
}
