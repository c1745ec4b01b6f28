package repository

import (
	"context"
	"fmt"
	"time"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
)

// DepositRepository implements the service.DepositRepository interface
type DepositRepository struct {
	q queryable
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *database.DB) *DepositRepository {
	return &DepositRepository{q: db.Pool}
}

// newDepositRepositoryWithTx creates a new deposit repository with a transaction
func newDepositRepositoryWithTx(tx queryable) *DepositRepository {
	return &DepositRepository{q: tx}
}

// Create inserts a new pending deposit request
func (r *DepositRepository) Create(ctx context.Context, deposit *models.Deposit) error {
	query := `
		INSERT INTO deposits (user_id, amount, reference, status, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		deposit.UserID,
		deposit.Amount,
		deposit.Reference,
		deposit.Status,
		deposit.Note,
	).Scan(&deposit.ID, &deposit.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create deposit for user %d: %w", deposit.UserID, err)
	}

	return nil
}

// GetByID retrieves a deposit by id
func (r *DepositRepository) GetByID(ctx context.Context, id int64) (*models.Deposit, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate retrieves a deposit by id with a row lock held for the
// duration of the surrounding transaction.
func (r *DepositRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Deposit, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

func (r *DepositRepository) getByID(ctx context.Context, id int64, lock string) (*models.Deposit, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, amount, reference, status, note, created_at, reviewed_at
		FROM deposits
		WHERE id = $1
		%s
	`, lock)

	var deposit models.Deposit
	err := r.q.QueryRow(ctx, query, id).Scan(
		&deposit.ID,
		&deposit.UserID,
		&deposit.Amount,
		&deposit.Reference,
		&deposit.Status,
		&deposit.Note,
		&deposit.CreatedAt,
		&deposit.ReviewedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit %d: %w", id, err)
	}

	return &deposit, nil
}

// UpdateStatus transitions a deposit out of pending. Returns false when the
// deposit was already reviewed, which makes double-approval a no-op.
func (r *DepositRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, reviewedAt time.Time) (bool, error) {
	query := `
		UPDATE deposits
		SET status = $2, reviewed_at = $3
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, id, status, reviewedAt)
	if err != nil {
		return false, fmt.Errorf("failed to update deposit %d status: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// ListPending returns all pending deposits oldest first
func (r *DepositRepository) ListPending(ctx context.Context) ([]*models.Deposit, error) {
	query := `
		SELECT id, user_id, amount, reference, status, note, created_at, reviewed_at
		FROM deposits
		WHERE status = 'pending'
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending deposits: %w", err)
	}
	defer rows.Close()

	var deposits []*models.Deposit
	for rows.Next() {
		var deposit models.Deposit
		err := rows.Scan(
			&deposit.ID,
			&deposit.UserID,
			&deposit.Amount,
			&deposit.Reference,
			&deposit.Status,
			&deposit.Note,
			&deposit.CreatedAt,
			&deposit.ReviewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposits = append(deposits, &deposit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deposits: %w", err)
	}

	return deposits, nil
}

// CountApprovedByUser returns how many of the user's deposits are approved
func (r *DepositRepository) CountApprovedByUser(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM deposits
		WHERE user_id = $1 AND status = 'approved'
	`

	var count int
	if err := r.q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count approved deposits for user %d: %w", userID, err)
	}

	return count, nil
}
