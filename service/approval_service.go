package service

import (
	"context"
	"fmt"

	"matka/events"
	"matka/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type approvalService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
}

// NewApprovalService creates a new approval service
func NewApprovalService(uowFactory UnitOfWorkFactory, clock Clock) ApprovalService {
	return &approvalService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (s *approvalService) RequestDeposit(ctx context.Context, userID int64, amount decimal.Decimal, note string, policy models.PolicySnapshot) (*models.Deposit, error) {
	if amount.LessThan(policy.MinDepositAmount) {
		return nil, fmt.Errorf("%w: minimum deposit is %s", ErrValidation, policy.MinDepositAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	deposit := &models.Deposit{
		UserID:    userID,
		Amount:    amount,
		Reference: uuid.New(),
		Status:    models.RequestStatusPending,
		Note:      note,
	}
	if err := uow.DepositRepository().Create(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to create deposit request: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return deposit, nil
}

// ApproveDeposit transitions a pending deposit to approved and credits the
// wallet. The first approved deposit of a referred user also credits the
// referrer's bonus balance per the policy snapshot.
func (s *approvalService) ApproveDeposit(ctx context.Context, depositID int64, policy models.PolicySnapshot) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deposit, err := uow.DepositRepository().GetByIDForUpdate(ctx, depositID)
	if err != nil {
		return fmt.Errorf("failed to lock deposit: %w", err)
	}
	if deposit == nil {
		return ErrRequestNotFound
	}
	if deposit.Status != models.RequestStatusPending {
		return ErrRequestNotPending
	}

	flipped, err := uow.DepositRepository().UpdateStatus(ctx, depositID, models.RequestStatusApproved, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to approve deposit: %w", err)
	}
	if !flipped {
		return ErrRequestNotPending
	}

	wallet, err := uow.WalletRepository().GetByUserID(ctx, deposit.UserID)
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return ErrWalletNotFound
	}

	if _, err := applyLedger(ctx, uow, wallet.ID, deposit.Amount, models.TransactionTypeDeposit, &deposit.ID, "deposit approved", policy); err != nil {
		return err
	}

	if err := s.creditReferralBonus(ctx, uow, deposit, policy); err != nil {
		return err
	}

	uow.EventBus().Publish(events.DepositApprovedEvent{
		DepositID: deposit.ID,
		UserID:    deposit.UserID,
		Amount:    deposit.Amount,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *approvalService) RejectDeposit(ctx context.Context, depositID int64, note string) error {
	return s.reject(ctx, depositID, note, true)
}

func (s *approvalService) RequestWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, account string, policy models.PolicySnapshot) (*models.WithdrawRequest, error) {
	if amount.LessThan(policy.MinWithdrawAmount) {
		return nil, fmt.Errorf("%w: minimum withdrawal is %s", ErrValidation, policy.MinWithdrawAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	// Funds are only reserved at approval time, but an obviously
	// uncoverable request is rejected up front.
	if wallet.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	request := &models.WithdrawRequest{
		UserID:    userID,
		Amount:    amount,
		Reference: uuid.New(),
		Account:   account,
		Status:    models.RequestStatusPending,
	}
	if err := uow.WithdrawRequestRepository().Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create withdraw request: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return request, nil
}

// ApproveWithdrawal attempts the ledger debit and only then marks the
// request approved. If funds have drained since the request was made the
// debit fails, everything rolls back and the request stays pending.
func (s *approvalService) ApproveWithdrawal(ctx context.Context, withdrawalID int64, policy models.PolicySnapshot) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	request, err := uow.WithdrawRequestRepository().GetByIDForUpdate(ctx, withdrawalID)
	if err != nil {
		return fmt.Errorf("failed to lock withdraw request: %w", err)
	}
	if request == nil {
		return ErrRequestNotFound
	}
	if request.Status != models.RequestStatusPending {
		return ErrRequestNotPending
	}

	wallet, err := uow.WalletRepository().GetByUserID(ctx, request.UserID)
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return ErrWalletNotFound
	}

	// Withdrawals always come out of the real balance; bonus funds are not
	// withdrawable regardless of the bid-spend policy.
	withdrawPolicy := policy
	withdrawPolicy.BonusSpendable = false

	if _, err := applyLedger(ctx, uow, wallet.ID, request.Amount, models.TransactionTypeWithdraw, &request.ID, "withdrawal approved", withdrawPolicy); err != nil {
		return err
	}

	flipped, err := uow.WithdrawRequestRepository().UpdateStatus(ctx, withdrawalID, models.RequestStatusApproved, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to approve withdraw request: %w", err)
	}
	if !flipped {
		return ErrRequestNotPending
	}

	uow.EventBus().Publish(events.WithdrawalApprovedEvent{
		WithdrawalID: request.ID,
		UserID:       request.UserID,
		Amount:       request.Amount,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *approvalService) RejectWithdrawal(ctx context.Context, withdrawalID int64, note string) error {
	return s.reject(ctx, withdrawalID, note, false)
}

// reject flips a pending request to rejected; no ledger call is made
func (s *approvalService) reject(ctx context.Context, requestID int64, note string, isDeposit bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var flipped bool
	var err error
	if isDeposit {
		deposit, lockErr := uow.DepositRepository().GetByIDForUpdate(ctx, requestID)
		if lockErr != nil {
			return fmt.Errorf("failed to lock deposit: %w", lockErr)
		}
		if deposit == nil {
			return ErrRequestNotFound
		}
		flipped, err = uow.DepositRepository().UpdateStatus(ctx, requestID, models.RequestStatusRejected, s.clock.Now())
	} else {
		request, lockErr := uow.WithdrawRequestRepository().GetByIDForUpdate(ctx, requestID)
		if lockErr != nil {
			return fmt.Errorf("failed to lock withdraw request: %w", lockErr)
		}
		if request == nil {
			return ErrRequestNotFound
		}
		flipped, err = uow.WithdrawRequestRepository().UpdateStatus(ctx, requestID, models.RequestStatusRejected, s.clock.Now())
	}
	if err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}
	if !flipped {
		return ErrRequestNotPending
	}

	log.WithFields(log.Fields{"requestID": requestID, "note": note}).Info("Request rejected")

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// creditReferralBonus credits the referrer's bonus balance when this is the
// referred user's first approved deposit
func (s *approvalService) creditReferralBonus(ctx context.Context, uow UnitOfWork, deposit *models.Deposit, policy models.PolicySnapshot) error {
	if !policy.ReferralBonus.IsPositive() {
		return nil
	}

	user, err := uow.UserRepository().GetByID(ctx, deposit.UserID)
	if err != nil {
		return fmt.Errorf("failed to get depositor: %w", err)
	}
	if user == nil || user.ReferredBy == nil {
		return nil
	}

	approved, err := uow.DepositRepository().CountApprovedByUser(ctx, deposit.UserID)
	if err != nil {
		return fmt.Errorf("failed to count approved deposits: %w", err)
	}
	if approved != 1 {
		// Bonus only on the first approved deposit
		return nil
	}

	referrerWallet, err := uow.WalletRepository().GetByUserID(ctx, *user.ReferredBy)
	if err != nil {
		return fmt.Errorf("failed to get referrer wallet: %w", err)
	}
	if referrerWallet == nil {
		log.WithField("referrerID", *user.ReferredBy).Warn("Referrer has no wallet, skipping bonus")
		return nil
	}

	_, err = applyLedger(ctx, uow, referrerWallet.ID, policy.ReferralBonus, models.TransactionTypeBonus, &deposit.ID, "referral bonus", policy)
	if err != nil {
		return err
	}
	return nil
}
