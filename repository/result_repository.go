package repository

import (
	"context"
	"fmt"
	"time"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
)

// ResultRepository implements the service.ResultRepository interface
type ResultRepository struct {
	q queryable
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{q: db.Pool}
}

// newResultRepositoryWithTx creates a new result repository with a transaction
func newResultRepositoryWithTx(tx queryable) *ResultRepository {
	return &ResultRepository{q: tx}
}

// GetByMarketDate retrieves the result row for a market and bet date
func (r *ResultRepository) GetByMarketDate(ctx context.Context, marketID int64, betDate time.Time) (*models.Result, error) {
	query := `
		SELECT id, market_id, bet_date, open_panel, close_panel, created_at, updated_at
		FROM results
		WHERE market_id = $1 AND bet_date = $2
	`

	var result models.Result
	err := r.q.QueryRow(ctx, query, marketID, betDate).Scan(
		&result.ID,
		&result.MarketID,
		&result.BetDate,
		&result.OpenPanel,
		&result.ClosePanel,
		&result.CreatedAt,
		&result.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result for market %d: %w", marketID, err)
	}

	return &result, nil
}

// GetOrCreateForUpdate retrieves the result row for a market and bet date,
// inserting it first if absent, and locks it for the duration of the
// surrounding transaction. Concurrent declarers serialize on this lock.
func (r *ResultRepository) GetOrCreateForUpdate(ctx context.Context, marketID int64, betDate time.Time) (*models.Result, error) {
	insert := `
		INSERT INTO results (market_id, bet_date)
		VALUES ($1, $2)
		ON CONFLICT (market_id, bet_date) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, insert, marketID, betDate); err != nil {
		return nil, fmt.Errorf("failed to ensure result row for market %d: %w", marketID, err)
	}

	query := `
		SELECT id, market_id, bet_date, open_panel, close_panel, created_at, updated_at
		FROM results
		WHERE market_id = $1 AND bet_date = $2
		FOR UPDATE
	`

	var result models.Result
	err := r.q.QueryRow(ctx, query, marketID, betDate).Scan(
		&result.ID,
		&result.MarketID,
		&result.BetDate,
		&result.OpenPanel,
		&result.ClosePanel,
		&result.CreatedAt,
		&result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lock result row for market %d: %w", marketID, err)
	}

	return &result, nil
}

// SetPanel publishes a session's panel. Returns false when that session's
// panel was already declared, so repeat declarations never overwrite.
func (r *ResultRepository) SetPanel(ctx context.Context, resultID int64, session models.Session, panel string) (bool, error) {
	var query string
	switch session {
	case models.SessionOpen:
		query = `
			UPDATE results
			SET open_panel = $2, updated_at = NOW()
			WHERE id = $1 AND open_panel IS NULL
		`
	case models.SessionClose:
		query = `
			UPDATE results
			SET close_panel = $2, updated_at = NOW()
			WHERE id = $1 AND close_panel IS NULL
		`
	default:
		return false, fmt.Errorf("invalid session %q", session)
	}

	result, err := r.q.Exec(ctx, query, resultID, panel)
	if err != nil {
		return false, fmt.Errorf("failed to set %s panel on result %d: %w", session, resultID, err)
	}

	return result.RowsAffected() > 0, nil
}
