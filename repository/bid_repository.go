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

// BidRepository implements the service.BidRepository interface
type BidRepository struct {
	q queryable
}

// NewBidRepository creates a new bid repository
func NewBidRepository(db *database.DB) *BidRepository {
	return &BidRepository{q: db.Pool}
}

// newBidRepositoryWithTx creates a new bid repository with a transaction
func newBidRepositoryWithTx(tx queryable) *BidRepository {
	return &BidRepository{q: tx}
}

// Create inserts a new pending bid
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (user_id, market_id, game_type_id, bet_date, session, digit, amount, win_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bid.UserID,
		bid.MarketID,
		bid.GameTypeID,
		bid.BetDate,
		bid.Session,
		bid.Digit,
		bid.Amount,
		bid.WinAmount,
		bid.Status,
	).Scan(&bid.ID, &bid.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bid for user %d: %w", bid.UserID, err)
	}

	return nil
}

// GetByID retrieves a bid by id
func (r *BidRepository) GetByID(ctx context.Context, id int64) (*models.Bid, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate retrieves a bid by id with a row lock held for the
// duration of the surrounding transaction.
func (r *BidRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bid, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

func (r *BidRepository) getByID(ctx context.Context, id int64, lock string) (*models.Bid, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, market_id, game_type_id, bet_date, session, digit, amount, win_amount, status, created_at, settled_at
		FROM bids
		WHERE id = $1
		%s
	`, lock)

	var bid models.Bid
	err := r.q.QueryRow(ctx, query, id).Scan(
		&bid.ID,
		&bid.UserID,
		&bid.MarketID,
		&bid.GameTypeID,
		&bid.BetDate,
		&bid.Session,
		&bid.Digit,
		&bid.Amount,
		&bid.WinAmount,
		&bid.Status,
		&bid.CreatedAt,
		&bid.SettledAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid %d: %w", id, err)
	}

	return &bid, nil
}

// GetByUser returns a user's most recent bids
func (r *BidRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bid, error) {
	query := `
		SELECT id, user_id, market_id, game_type_id, bet_date, session, digit, amount, win_amount, status, created_at, settled_at
		FROM bids
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bids for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanBids(rows)
}

// GetPendingIDs returns the ids of pending bids for a market session on a bet date.
// Only ids are loaded so settlement can lock and process each bid in its own
// transaction.
func (r *BidRepository) GetPendingIDs(ctx context.Context, marketID int64, betDate time.Time, session models.Session) ([]int64, error) {
	query := `
		SELECT id
		FROM bids
		WHERE market_id = $1 AND bet_date = $2 AND session = $3 AND status = 'pending'
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, marketID, betDate, session)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bids for market %d: %w", marketID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan bid id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bid ids: %w", err)
	}

	return ids, nil
}

// MarkSettled transitions a pending bid to a terminal status. Returns false
// when the bid was already settled, which makes settlement retries no-ops.
func (r *BidRepository) MarkSettled(ctx context.Context, id int64, status models.BidStatus, winAmount decimal.Decimal, settledAt time.Time) (bool, error) {
	query := `
		UPDATE bids
		SET status = $2, win_amount = $3, settled_at = $4
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, id, status, winAmount, settledAt)
	if err != nil {
		return false, fmt.Errorf("failed to settle bid %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

func scanBids(rows pgx.Rows) ([]*models.Bid, error) {
	var bids []*models.Bid
	for rows.Next() {
		var bid models.Bid
		err := rows.Scan(
			&bid.ID,
			&bid.UserID,
			&bid.MarketID,
			&bid.GameTypeID,
			&bid.BetDate,
			&bid.Session,
			&bid.Digit,
			&bid.Amount,
			&bid.WinAmount,
			&bid.Status,
			&bid.CreatedAt,
			&bid.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, &bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bids: %w", err)
	}

	return bids, nil
}
