package service

import "errors"

// Sentinel errors form the user-visible failure taxonomy. Handlers match
// them with errors.Is; internal store errors are wrapped and never shown.
var (
	// ErrWalletNotFound means the wallet row does not exist. Fatal for the
	// request; nothing was committed.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientFunds means spendable funds are below the debit amount
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrMarketClosed means the requested session is not accepting bids now
	ErrMarketClosed = errors.New("market session is not accepting bids")

	// ErrBettingDisabled means the market's manual kill-switch is off
	ErrBettingDisabled = errors.New("market is closed for betting")

	// ErrWrongSession means the game type only settles on the close session
	ErrWrongSession = errors.New("game type accepts bids on the close session only")

	ErrValidation   = errors.New("invalid input")
	ErrInvalidStake = errors.New("stake amount is invalid")
	ErrInvalidDigit = errors.New("digit format is invalid for this game type")

	ErrUserNotFound     = errors.New("user not found")
	ErrMarketNotFound   = errors.New("market not found")
	ErrGameTypeNotFound = errors.New("game type not found")
	ErrRequestNotFound  = errors.New("request not found")

	// ErrDuplicateTransaction is the idempotence guard: a successful ledger
	// entry for the same (type, reference) already exists. Treated as a
	// logged no-op by settlement and approval flows, never double-counted.
	ErrDuplicateTransaction = errors.New("duplicate ledger entry for reference")

	// ErrResultAlreadyDeclared guards against re-declaring a session result
	ErrResultAlreadyDeclared = errors.New("result already declared for session")

	// ErrResultNotDeclared means settlement was requested before the
	// session's panel was published
	ErrResultNotDeclared = errors.New("result not declared for session")

	// ErrOpenResultMissing means a close declaration arrived before the
	// open panel; jodi and sangam matching need both
	ErrOpenResultMissing = errors.New("open result must be declared before close")

	// ErrRequestNotPending means an approval-state transition was attempted
	// on a deposit/withdrawal that is no longer pending
	ErrRequestNotPending = errors.New("request is not pending")
)
