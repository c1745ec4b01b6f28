package service

import (
	"context"
	"time"

	"matka/events"
	"matka/models"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user, optionally linked to a referrer
	Create(ctx context.Context, username string, referredBy *int64) (*models.User, error)
}

// WalletRepository defines the interface for wallet data access. All
// mutation methods are single guarded UPDATE statements; callers serialize
// per-wallet via GetByIDForUpdate inside a transaction.
type WalletRepository interface {
	// CreateForUser creates an empty wallet for a user
	CreateForUser(ctx context.Context, userID int64) (*models.Wallet, error)

	// GetByUserID retrieves a user's wallet
	GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error)

	// GetByIDForUpdate retrieves a wallet and takes its row lock for the
	// remainder of the transaction
	GetByIDForUpdate(ctx context.Context, walletID int64) (*models.Wallet, error)

	// Credit adds funds to the balance and/or bonus columns
	Credit(ctx context.Context, walletID int64, toBalance, toBonus decimal.Decimal) error

	// Debit removes funds from the balance and/or bonus columns, failing
	// if either column would go negative
	Debit(ctx context.Context, walletID int64, fromBalance, fromBonus decimal.Decimal) error
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Record inserts a ledger row; rows are never updated or deleted
	Record(ctx context.Context, txn *models.WalletTransaction) error

	// ExistsReference reports whether a successful entry for the
	// (type, reference) pair already exists
	ExistsReference(ctx context.Context, txnType models.TransactionType, referenceID int64) (bool, error)

	// GetByWallet returns a wallet's ledger entries, newest first
	GetByWallet(ctx context.Context, walletID int64, limit int) ([]*models.WalletTransaction, error)

	// GetByWalletDateRange returns a wallet's ledger entries in a range
	GetByWalletDateRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.WalletTransaction, error)

	// SumSuccessful returns the signed sum of all successful entries for a
	// wallet; equals balance+bonus at all times
	SumSuccessful(ctx context.Context, walletID int64) (decimal.Decimal, error)
}

// MarketRepository defines the interface for market data access
type MarketRepository interface {
	Create(ctx context.Context, market *models.Market) error
	GetByID(ctx context.Context, id int64) (*models.Market, error)
	GetAll(ctx context.Context) ([]*models.Market, error)
	Update(ctx context.Context, market *models.Market) error
}

// GameTypeRepository defines the interface for game type configuration
type GameTypeRepository interface {
	Create(ctx context.Context, gameType *models.GameType) error
	GetByID(ctx context.Context, id int64) (*models.GameType, error)
	GetAll(ctx context.Context) ([]*models.GameType, error)
}

// BidRepository defines the interface for bid data access
type BidRepository interface {
	// Create inserts a new pending bid
	Create(ctx context.Context, bid *models.Bid) error

	// GetByID retrieves a bid by id
	GetByID(ctx context.Context, id int64) (*models.Bid, error)

	// GetByIDForUpdate retrieves a bid and takes its row lock
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Bid, error)

	// GetByUser returns a user's bids, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bid, error)

	// GetPendingIDs returns ids of all pending bids for a market session
	GetPendingIDs(ctx context.Context, marketID int64, betDate time.Time, session models.Session) ([]int64, error)

	// MarkSettled flips a bid out of pending; returns false when the bid
	// was already settled (the guard behind settlement idempotence)
	MarkSettled(ctx context.Context, id int64, status models.BidStatus, winAmount decimal.Decimal, settledAt time.Time) (bool, error)
}

// ResultRepository defines the interface for declared results
type ResultRepository interface {
	// GetByMarketDate retrieves the result row for a market and day
	GetByMarketDate(ctx context.Context, marketID int64, betDate time.Time) (*models.Result, error)

	// GetOrCreateForUpdate retrieves or inserts the result row and takes
	// its row lock so concurrent declarations serialize
	GetOrCreateForUpdate(ctx context.Context, marketID int64, betDate time.Time) (*models.Result, error)

	// SetPanel publishes a session's panel; returns false when the panel
	// was already declared
	SetPanel(ctx context.Context, resultID int64, session models.Session, panel string) (bool, error)
}

// DepositRepository defines the interface for deposit requests
type DepositRepository interface {
	Create(ctx context.Context, deposit *models.Deposit) error
	GetByID(ctx context.Context, id int64) (*models.Deposit, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Deposit, error)

	// UpdateStatus transitions out of pending; returns false when the
	// request was not pending
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, reviewedAt time.Time) (bool, error)

	ListPending(ctx context.Context) ([]*models.Deposit, error)

	// CountApprovedByUser returns how many of the user's deposits are
	// approved; used for the first-deposit referral bonus
	CountApprovedByUser(ctx context.Context, userID int64) (int, error)
}

// WithdrawRequestRepository defines the interface for withdraw requests
type WithdrawRequestRepository interface {
	Create(ctx context.Context, request *models.WithdrawRequest) error
	GetByID(ctx context.Context, id int64) (*models.WithdrawRequest, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.WithdrawRequest, error)
	UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, reviewedAt time.Time) (bool, error)
	ListPending(ctx context.Context) ([]*models.WithdrawRequest, error)
}

// EventPublisher is the transactional event outlet of a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork scopes repository access to one database transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	WalletRepository() WalletRepository
	TransactionRepository() TransactionRepository
	MarketRepository() MarketRepository
	GameTypeRepository() GameTypeRepository
	BidRepository() BidRepository
	ResultRepository() ResultRepository
	DepositRepository() DepositRepository
	WithdrawRequestRepository() WithdrawRequestRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates one together
	// with their wallet
	GetOrCreateUser(ctx context.Context, username string, referredBy *int64) (*models.User, error)
}

// MarketService defines the interface for market administration and the
// session-state projection consumed by listing and bid-submission surfaces
type MarketService interface {
	// SessionState returns the live accepting state of a market's sessions
	SessionState(ctx context.Context, marketID int64) (models.SessionState, error)

	// ListMarkets returns all markets with their live session state
	ListMarkets(ctx context.Context) ([]*models.MarketStatus, error)

	// CreateMarket creates a market; open/close are "HH:MM" clock times
	CreateMarket(ctx context.Context, name, marketType, openTime, closeTime string) (*models.Market, error)

	// UpdateMarketWindow changes a market's open/close times
	UpdateMarketWindow(ctx context.Context, marketID int64, openTime, closeTime string) error

	// SetBettingEnabled flips the manual kill-switch
	SetBettingEnabled(ctx context.Context, marketID int64, enabled bool) error
}

// PlaceBidInput carries a bid submission
type PlaceBidInput struct {
	UserID     int64          `validate:"required,gt=0"`
	MarketID   int64          `validate:"required,gt=0"`
	GameTypeID int64          `validate:"required,gt=0"`
	Session    models.Session `validate:"required,oneof=open close"`
	Digit      string         `validate:"required"`
	Amount     int64          `validate:"required,gt=0"`
}

// BidService defines the interface for bid placement
type BidService interface {
	// PlaceBid validates, debits the stake and persists the pending bid as
	// one atomic unit
	PlaceBid(ctx context.Context, input PlaceBidInput, policy models.PolicySnapshot) (*models.BidReceipt, error)
}

// LedgerService defines the interface for wallet ledger operations
type LedgerService interface {
	// ApplyTransaction applies one balance mutation and appends its ledger
	// row atomically. Amount is a positive magnitude; the sign is derived
	// from the type.
	ApplyTransaction(ctx context.Context, walletID int64, amount decimal.Decimal, txnType models.TransactionType, referenceID *int64, note string, policy models.PolicySnapshot) (*models.WalletTransaction, error)

	// Statement returns a wallet's recent ledger entries
	Statement(ctx context.Context, walletID int64, limit int) ([]*models.WalletTransaction, error)

	// StatementRange returns a wallet's ledger entries in a date range
	StatementRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.WalletTransaction, error)
}

// SettlementService defines the interface for result declaration and bid
// settlement
type SettlementService interface {
	// DeclareResult publishes a session's panel and settles the session
	DeclareResult(ctx context.Context, marketID int64, betDate time.Time, session models.Session, panel string) (*models.SettlementReport, error)

	// SettleSession resolves all pending bids for a declared session
	SettleSession(ctx context.Context, marketID int64, betDate time.Time, session models.Session) (*models.SettlementReport, error)

	// RefundSession administratively refunds all pending bids of a session
	RefundSession(ctx context.Context, marketID int64, betDate time.Time, session models.Session, note string) (*models.SettlementReport, error)
}

// ApprovalService defines the interface for the deposit/withdrawal
// approval workflow
type ApprovalService interface {
	RequestDeposit(ctx context.Context, userID int64, amount decimal.Decimal, note string, policy models.PolicySnapshot) (*models.Deposit, error)
	ApproveDeposit(ctx context.Context, depositID int64, policy models.PolicySnapshot) error
	RejectDeposit(ctx context.Context, depositID int64, note string) error

	RequestWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, account string, policy models.PolicySnapshot) (*models.WithdrawRequest, error)
	ApproveWithdrawal(ctx context.Context, withdrawalID int64, policy models.PolicySnapshot) error
	RejectWithdrawal(ctx context.Context, withdrawalID int64, note string) error
}
