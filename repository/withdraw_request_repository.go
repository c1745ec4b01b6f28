package repository

import (
	"context"
	"fmt"
	"time"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
)

// WithdrawRequestRepository implements the service.WithdrawRequestRepository interface
type WithdrawRequestRepository struct {
	q queryable
}

// NewWithdrawRequestRepository creates a new withdraw request repository
func NewWithdrawRequestRepository(db *database.DB) *WithdrawRequestRepository {
	return &WithdrawRequestRepository{q: db.Pool}
}

// newWithdrawRequestRepositoryWithTx creates a new withdraw request repository with a transaction
func newWithdrawRequestRepositoryWithTx(tx queryable) *WithdrawRequestRepository {
	return &WithdrawRequestRepository{q: tx}
}

// Create inserts a new pending withdrawal request
func (r *WithdrawRequestRepository) Create(ctx context.Context, request *models.WithdrawRequest) error {
	query := `
		INSERT INTO withdraw_requests (user_id, amount, reference, account, status, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		request.UserID,
		request.Amount,
		request.Reference,
		request.Account,
		request.Status,
		request.Note,
	).Scan(&request.ID, &request.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create withdraw request for user %d: %w", request.UserID, err)
	}

	return nil
}

// GetByID retrieves a withdrawal request by id
func (r *WithdrawRequestRepository) GetByID(ctx context.Context, id int64) (*models.WithdrawRequest, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate retrieves a withdrawal request by id with a row lock held
// for the duration of the surrounding transaction.
func (r *WithdrawRequestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.WithdrawRequest, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

func (r *WithdrawRequestRepository) getByID(ctx context.Context, id int64, lock string) (*models.WithdrawRequest, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, amount, reference, account, status, note, created_at, reviewed_at
		FROM withdraw_requests
		WHERE id = $1
		%s
	`, lock)

	var request models.WithdrawRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.UserID,
		&request.Amount,
		&request.Reference,
		&request.Account,
		&request.Status,
		&request.Note,
		&request.CreatedAt,
		&request.ReviewedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdraw request %d: %w", id, err)
	}

	return &request, nil
}

// UpdateStatus transitions a withdrawal request out of pending. Returns false
// when the request was already reviewed.
func (r *WithdrawRequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, reviewedAt time.Time) (bool, error) {
	query := `
		UPDATE withdraw_requests
		SET status = $2, reviewed_at = $3
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, id, status, reviewedAt)
	if err != nil {
		return false, fmt.Errorf("failed to update withdraw request %d status: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// ListPending returns all pending withdrawal requests oldest first
func (r *WithdrawRequestRepository) ListPending(ctx context.Context) ([]*models.WithdrawRequest, error) {
	query := `
		SELECT id, user_id, amount, reference, account, status, note, created_at, reviewed_at
		FROM withdraw_requests
		WHERE status = 'pending'
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdraw requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.WithdrawRequest
	for rows.Next() {
		var request models.WithdrawRequest
		err := rows.Scan(
			&request.ID,
			&request.UserID,
			&request.Amount,
			&request.Reference,
			&request.Account,
			&request.Status,
			&request.Note,
			&request.CreatedAt,
			&request.ReviewedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdraw request: %w", err)
		}
		requests = append(requests, &request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdraw requests: %w", err)
	}

	return requests, nil
}
