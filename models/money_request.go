package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus is the approval state of an external money movement request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Deposit is a user's request to move external money into their wallet.
// Only the approved transition creates a ledger entry.
type Deposit struct {
	ID         int64           `db:"id"`
	UserID     int64           `db:"user_id"`
	Amount     decimal.Decimal `db:"amount"`
	Reference  uuid.UUID       `db:"reference"`
	Status     RequestStatus   `db:"status"`
	Note       string          `db:"note"`
	CreatedAt  time.Time       `db:"created_at"`
	ReviewedAt *time.Time      `db:"reviewed_at"`
}

// WithdrawRequest is a user's request to move wallet money out. The debit
// happens at approval time; if it fails the request stays pending.
type WithdrawRequest struct {
	ID         int64           `db:"id"`
	UserID     int64           `db:"user_id"`
	Amount     decimal.Decimal `db:"amount"`
	Reference  uuid.UUID       `db:"reference"`
	Account    string          `db:"account"`
	Status     RequestStatus   `db:"status"`
	Note       string          `db:"note"`
	CreatedAt  time.Time       `db:"created_at"`
	ReviewedAt *time.Time      `db:"reviewed_at"`
}
