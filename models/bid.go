package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidStatus is the settlement state of a bid. Transitions only flow
// pending -> won | lost | refunded, never back.
type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusWon      BidStatus = "won"
	BidStatusLost     BidStatus = "lost"
	BidStatusRefunded BidStatus = "refunded"
)

// Bid is a user's stake on a digit for one market session and betting day
type Bid struct {
	ID         int64           `db:"id"`
	UserID     int64           `db:"user_id"`
	MarketID   int64           `db:"market_id"`
	GameTypeID int64           `db:"game_type_id"`
	BetDate    time.Time       `db:"bet_date"`
	Session    Session         `db:"session"`
	Digit      string          `db:"digit"`
	Amount     int64           `db:"amount"`
	WinAmount  decimal.Decimal `db:"win_amount"`
	Status     BidStatus       `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
	SettledAt  *time.Time      `db:"settled_at"`
}

// BidReceipt is returned to the caller after a successful placement
type BidReceipt struct {
	Bid        *Bid
	NewBalance decimal.Decimal
}

// SettlementReport summarizes one settlement run over a market session
type SettlementReport struct {
	MarketID    int64
	BetDate     time.Time
	Session     Session
	Won         int
	Lost        int
	Refunded    int
	TotalPayout decimal.Decimal
}
