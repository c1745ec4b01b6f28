package service

import (
	"context"
	"time"

	"matka/events"
	"matka/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, username string, referredBy *int64) (*models.User, error) {
	args := m.Called(ctx, username, referredBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateForUser(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByIDForUpdate(ctx context.Context, walletID int64) (*models.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, walletID int64, toBalance, toBonus decimal.Decimal) error {
	args := m.Called(ctx, walletID, toBalance, toBonus)
	return args.Error(0)
}

func (m *MockWalletRepository) Debit(ctx context.Context, walletID int64, fromBalance, fromBonus decimal.Decimal) error {
	args := m.Called(ctx, walletID, fromBalance, fromBonus)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, txn *models.WalletTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) ExistsReference(ctx context.Context, txnType models.TransactionType, referenceID int64) (bool, error) {
	args := m.Called(ctx, txnType, referenceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) GetByWallet(ctx context.Context, walletID int64, limit int) ([]*models.WalletTransaction, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WalletTransaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByWalletDateRange(ctx context.Context, walletID int64, from, to time.Time) ([]*models.WalletTransaction, error) {
	args := m.Called(ctx, walletID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WalletTransaction), args.Error(1)
}

func (m *MockTransactionRepository) SumSuccessful(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockMarketRepository is a mock implementation of MarketRepository
type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) Create(ctx context.Context, market *models.Market) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

func (m *MockMarketRepository) GetByID(ctx context.Context, id int64) (*models.Market, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Market), args.Error(1)
}

func (m *MockMarketRepository) GetAll(ctx context.Context) ([]*models.Market, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Market), args.Error(1)
}

func (m *MockMarketRepository) Update(ctx context.Context, market *models.Market) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

// MockGameTypeRepository is a mock implementation of GameTypeRepository
type MockGameTypeRepository struct {
	mock.Mock
}

func (m *MockGameTypeRepository) Create(ctx context.Context, gameType *models.GameType) error {
	args := m.Called(ctx, gameType)
	return args.Error(0)
}

func (m *MockGameTypeRepository) GetByID(ctx context.Context, id int64) (*models.GameType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameType), args.Error(1)
}

func (m *MockGameTypeRepository) GetAll(ctx context.Context) ([]*models.GameType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameType), args.Error(1)
}

// MockBidRepository is a mock implementation of BidRepository
type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) Create(ctx context.Context, bid *models.Bid) error {
	args := m.Called(ctx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) GetByID(ctx context.Context, id int64) (*models.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *MockBidRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *MockBidRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bid, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bid), args.Error(1)
}

func (m *MockBidRepository) GetPendingIDs(ctx context.Context, marketID int64, betDate time.Time, session models.Session) ([]int64, error) {
	args := m.Called(ctx, marketID, betDate, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockBidRepository) MarkSettled(ctx context.Context, id int64, status models.BidStatus, winAmount decimal.Decimal, settledAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, winAmount, settledAt)
	return args.Bool(0), args.Error(1)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) GetByMarketDate(ctx context.Context, marketID int64, betDate time.Time) (*models.Result, error) {
	args := m.Called(ctx, marketID, betDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultRepository) GetOrCreateForUpdate(ctx context.Context, marketID int64, betDate time.Time) (*models.Result, error) {
	args := m.Called(ctx, marketID, betDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultRepository) SetPanel(ctx context.Context, resultID int64, session models.Session, panel string) (bool, error) {
	args := m.Called(ctx, resultID, session, panel)
	return args.Bool(0), args.Error(1)
}

// MockDepositRepository is a mock implementation of DepositRepository
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) Create(ctx context.Context, deposit *models.Deposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

func (m *MockDepositRepository) GetByID(ctx context.Context, id int64) (*models.Deposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deposit), args.Error(1)
}

func (m *MockDepositRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Deposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deposit), args.Error(1)
}

func (m *MockDepositRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, reviewedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, reviewedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockDepositRepository) ListPending(ctx context.Context) ([]*models.Deposit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deposit), args.Error(1)
}

func (m *MockDepositRepository) CountApprovedByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockWithdrawRequestRepository is a mock implementation of WithdrawRequestRepository
type MockWithdrawRequestRepository struct {
	mock.Mock
}

func (m *MockWithdrawRequestRepository) Create(ctx context.Context, request *models.WithdrawRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockWithdrawRequestRepository) GetByID(ctx context.Context, id int64) (*models.WithdrawRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawRequest), args.Error(1)
}

func (m *MockWithdrawRequestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.WithdrawRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawRequest), args.Error(1)
}

func (m *MockWithdrawRequestRepository) UpdateStatus(ctx context.Context, id int64, status models.RequestStatus, reviewedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, reviewedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockWithdrawRequestRepository) ListPending(ctx context.Context) ([]*models.WithdrawRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WithdrawRequest), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that don't assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository
// accessors return whatever SetRepositories installed instead of going
// through testify expectations.
type MockUnitOfWork struct {
	mock.Mock

	userRepo        UserRepository
	walletRepo      WalletRepository
	transactionRepo TransactionRepository
	marketRepo      MarketRepository
	gameTypeRepo    GameTypeRepository
	bidRepo         BidRepository
	resultRepo      ResultRepository
	depositRepo     DepositRepository
	withdrawRepo    WithdrawRequestRepository
	eventBus        EventPublisher
}

// SetRepositories installs the repository mocks this unit of work hands out.
// Nil entries are fine for repositories the test never touches.
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	walletRepo WalletRepository,
	transactionRepo TransactionRepository,
	marketRepo MarketRepository,
	gameTypeRepo GameTypeRepository,
	bidRepo BidRepository,
	resultRepo ResultRepository,
	depositRepo DepositRepository,
	withdrawRepo WithdrawRequestRepository,
) {
	m.userRepo = userRepo
	m.walletRepo = walletRepo
	m.transactionRepo = transactionRepo
	m.marketRepo = marketRepo
	m.gameTypeRepo = gameTypeRepo
	m.bidRepo = bidRepo
	m.resultRepo = resultRepo
	m.depositRepo = depositRepo
	m.withdrawRepo = withdrawRepo
}

// SetEventBus installs the event publisher handed out by EventBus()
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository { return m.userRepo }

func (m *MockUnitOfWork) WalletRepository() WalletRepository { return m.walletRepo }

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository { return m.transactionRepo }

func (m *MockUnitOfWork) MarketRepository() MarketRepository { return m.marketRepo }

func (m *MockUnitOfWork) GameTypeRepository() GameTypeRepository { return m.gameTypeRepo }

func (m *MockUnitOfWork) BidRepository() BidRepository { return m.bidRepo }

func (m *MockUnitOfWork) ResultRepository() ResultRepository { return m.resultRepo }

func (m *MockUnitOfWork) DepositRepository() DepositRepository { return m.depositRepo }

func (m *MockUnitOfWork) WithdrawRequestRepository() WithdrawRequestRepository { return m.withdrawRepo }

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return noopPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := f.Called()
	return args.Get(0).(UnitOfWork)
}
