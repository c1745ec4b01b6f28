package events

import (
	"context"
	"sync"
	"time"

	"matka/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeBidPlaced           EventType = "bid_placed"
	EventTypeBidSettled          EventType = "bid_settled"
	EventTypeResultDeclared      EventType = "result_declared"
	EventTypeSettlementCompleted EventType = "settlement_completed"
	EventTypeDepositApproved     EventType = "deposit_approved"
	EventTypeWithdrawalApproved  EventType = "withdrawal_approved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent is emitted for every successful ledger entry
type BalanceChangeEvent struct {
	WalletID        int64
	UserID          int64
	Amount          decimal.Decimal
	BalanceAfter    decimal.Decimal
	TransactionType models.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BidPlacedEvent is emitted when a bid is accepted and debited
type BidPlacedEvent struct {
	BidID    int64
	UserID   int64
	MarketID int64
	Session  models.Session
	Amount   int64
}

func (e BidPlacedEvent) Type() EventType {
	return EventTypeBidPlaced
}

// BidSettledEvent is emitted for each bid resolved by settlement
type BidSettledEvent struct {
	BidID     int64
	UserID    int64
	Status    models.BidStatus
	WinAmount decimal.Decimal
}

func (e BidSettledEvent) Type() EventType {
	return EventTypeBidSettled
}

// ResultDeclaredEvent is emitted when a session's panel is published
type ResultDeclaredEvent struct {
	MarketID int64
	BetDate  time.Time
	Session  models.Session
	Panel    string
}

func (e ResultDeclaredEvent) Type() EventType {
	return EventTypeResultDeclared
}

// SettlementCompletedEvent is emitted after a settlement batch finishes
type SettlementCompletedEvent struct {
	MarketID    int64
	BetDate     time.Time
	Session     models.Session
	Won         int
	Lost        int
	TotalPayout decimal.Decimal
}

func (e SettlementCompletedEvent) Type() EventType {
	return EventTypeSettlementCompleted
}

// DepositApprovedEvent is emitted when a deposit request is approved
type DepositApprovedEvent struct {
	DepositID int64
	UserID    int64
	Amount    decimal.Decimal
}

func (e DepositApprovedEvent) Type() EventType {
	return EventTypeDepositApproved
}

// WithdrawalApprovedEvent is emitted when a withdraw request is approved
type WithdrawalApprovedEvent struct {
	WithdrawalID int64
	UserID       int64
	Amount       decimal.Decimal
}

func (e WithdrawalApprovedEvent) Type() EventType {
	return EventTypeWithdrawalApproved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Handlers run asynchronously so a slow subscriber cannot block the caller
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and
// forwards them to the real bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
// Events are emitted on a background context so they outlive the
// transaction context.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
