package repository

import (
	"context"
	"fmt"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
)

// MarketRepository implements the service.MarketRepository interface
type MarketRepository struct {
	q queryable
}

// NewMarketRepository creates a new market repository
func NewMarketRepository(db *database.DB) *MarketRepository {
	return &MarketRepository{q: db.Pool}
}

// newMarketRepositoryWithTx creates a new market repository with a transaction
func newMarketRepositoryWithTx(tx queryable) *MarketRepository {
	return &MarketRepository{q: tx}
}

// Create creates a new market
func (r *MarketRepository) Create(ctx context.Context, market *models.Market) error {
	query := `
		INSERT INTO markets (name, market_type, open_minute, close_minute, betting_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		market.Name,
		market.Type,
		int(market.OpenMinute),
		int(market.CloseMinute),
		market.BettingEnabled,
	).Scan(&market.ID, &market.CreatedAt, &market.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create market %q: %w", market.Name, err)
	}

	return nil
}

// GetByID retrieves a market by id
func (r *MarketRepository) GetByID(ctx context.Context, id int64) (*models.Market, error) {
	query := `
		SELECT id, name, market_type, open_minute, close_minute, betting_enabled, created_at, updated_at
		FROM markets
		WHERE id = $1
	`

	var market models.Market
	err := r.q.QueryRow(ctx, query, id).Scan(
		&market.ID,
		&market.Name,
		&market.Type,
		&market.OpenMinute,
		&market.CloseMinute,
		&market.BettingEnabled,
		&market.CreatedAt,
		&market.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market %d: %w", id, err)
	}

	return &market, nil
}

// GetAll returns all markets ordered by name
func (r *MarketRepository) GetAll(ctx context.Context) ([]*models.Market, error) {
	query := `
		SELECT id, name, market_type, open_minute, close_minute, betting_enabled, created_at, updated_at
		FROM markets
		ORDER BY name
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get markets: %w", err)
	}
	defer rows.Close()

	var markets []*models.Market
	for rows.Next() {
		var market models.Market
		err := rows.Scan(
			&market.ID,
			&market.Name,
			&market.Type,
			&market.OpenMinute,
			&market.CloseMinute,
			&market.BettingEnabled,
			&market.CreatedAt,
			&market.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market: %w", err)
		}
		markets = append(markets, &market)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate markets: %w", err)
	}

	return markets, nil
}

// Update updates a market's window and kill-switch
func (r *MarketRepository) Update(ctx context.Context, market *models.Market) error {
	query := `
		UPDATE markets
		SET name = $1, market_type = $2, open_minute = $3, close_minute = $4,
		    betting_enabled = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := r.q.Exec(ctx, query,
		market.Name,
		market.Type,
		int(market.OpenMinute),
		int(market.CloseMinute),
		market.BettingEnabled,
		market.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update market %d: %w", market.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("market %d not found", market.ID)
	}

	return nil
}
