package service

import (
	"context"
	"fmt"

	"matka/models"
)

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateUser retrieves an existing user or creates one together with
// an empty wallet. The user and wallet inserts share one transaction so a
// user can never exist without a wallet.
func (s *userService) GetOrCreateUser(ctx context.Context, username string, referredBy *int64) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", ErrValidation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	if referredBy != nil {
		referrer, err := uow.UserRepository().GetByID(ctx, *referredBy)
		if err != nil {
			return nil, fmt.Errorf("failed to get referrer: %w", err)
		}
		if referrer == nil {
			return nil, fmt.Errorf("%w: referrer %d", ErrUserNotFound, *referredBy)
		}
	}

	user, err = uow.UserRepository().Create(ctx, username, referredBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := uow.WalletRepository().CreateForUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}
