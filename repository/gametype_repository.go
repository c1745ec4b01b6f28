package repository

import (
	"context"
	"fmt"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
)

// GameTypeRepository implements the service.GameTypeRepository interface
type GameTypeRepository struct {
	q queryable
}

// NewGameTypeRepository creates a new game type repository
func NewGameTypeRepository(db *database.DB) *GameTypeRepository {
	return &GameTypeRepository{q: db.Pool}
}

// newGameTypeRepositoryWithTx creates a new game type repository with a transaction
func newGameTypeRepositoryWithTx(tx queryable) *GameTypeRepository {
	return &GameTypeRepository{q: tx}
}

// Create creates a new game type
func (r *GameTypeRepository) Create(ctx context.Context, gameType *models.GameType) error {
	query := `
		INSERT INTO game_types (name, category, rate, digit_pattern)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		gameType.Name,
		gameType.Category,
		gameType.Rate,
		gameType.DigitPattern,
	).Scan(&gameType.ID, &gameType.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game type %q: %w", gameType.Name, err)
	}

	return nil
}

// GetByID retrieves a game type by id
func (r *GameTypeRepository) GetByID(ctx context.Context, id int64) (*models.GameType, error) {
	query := `
		SELECT id, name, category, rate, digit_pattern, created_at
		FROM game_types
		WHERE id = $1
	`

	var gameType models.GameType
	err := r.q.QueryRow(ctx, query, id).Scan(
		&gameType.ID,
		&gameType.Name,
		&gameType.Category,
		&gameType.Rate,
		&gameType.DigitPattern,
		&gameType.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game type %d: %w", id, err)
	}

	return &gameType, nil
}

// GetAll returns all game types ordered by id
func (r *GameTypeRepository) GetAll(ctx context.Context) ([]*models.GameType, error) {
	query := `
		SELECT id, name, category, rate, digit_pattern, created_at
		FROM game_types
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get game types: %w", err)
	}
	defer rows.Close()

	var gameTypes []*models.GameType
	for rows.Next() {
		var gameType models.GameType
		err := rows.Scan(
			&gameType.ID,
			&gameType.Name,
			&gameType.Category,
			&gameType.Rate,
			&gameType.DigitPattern,
			&gameType.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game type: %w", err)
		}
		gameTypes = append(gameTypes, &gameType)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game types: %w", err)
	}

	return gameTypes, nil
}
