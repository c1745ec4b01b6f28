package cmd

import (
	"context"
	"fmt"
	"time"

	"matka/config"
	"matka/database"
	"matka/events"
	"matka/repository"
	"matka/service"

	log "github.com/sirupsen/logrus"
)

// App bundles the service layer. Transports (admin API, bot, cron) are
// expected to be bolted on top of this struct.
type App struct {
	Users      service.UserService
	Markets    service.MarketService
	Ledger     service.LedgerService
	Bids       service.BidService
	Settlement service.SettlementService
	Approvals  service.ApprovalService
	EventBus   *events.Bus
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	log.Info("Starting matka settlement core...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	subscribeAuditLog(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Clock pins all market window checks to the configured timezone
	clock, err := service.NewClock(cfg.MarketTimezone)
	if err != nil {
		return fmt.Errorf("failed to initialize clock: %w", err)
	}

	// Initialize services
	log.Info("Initializing services...")
	app := &App{
		Users:      service.NewUserService(uowFactory),
		Markets:    service.NewMarketService(uowFactory, clock),
		Ledger:     service.NewLedgerService(uowFactory),
		Bids:       service.NewBidService(uowFactory, clock),
		Settlement: service.NewSettlementService(uowFactory, clock, eventBus),
		Approvals:  service.NewApprovalService(uowFactory, clock),
		EventBus:   eventBus,
	}
	log.Info("Services initialized successfully")

	go watchSessionTransitions(ctx, app.Markets)

	// Wait for context cancellation
	log.Infof("Settlement core is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down...")

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}

// watchSessionTransitions polls market session state once a minute and logs
// every accepting-window change. Operators tail these lines to confirm
// markets opened and closed on schedule.
func watchSessionTransitions(ctx context.Context, markets service.MarketService) {
	type windowState struct {
		open  bool
		close bool
	}
	last := make(map[int64]windowState)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		views, err := markets.ListMarkets(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to poll market session state")
			continue
		}

		for _, status := range views {
			state := windowState{open: status.State.OpenAccepting, close: status.State.CloseAccepting}
			prev, seen := last[status.Market.ID]
			last[status.Market.ID] = state
			if seen && prev == state {
				continue
			}
			log.WithFields(log.Fields{
				"marketID":       status.Market.ID,
				"market":         status.Market.Name,
				"openAccepting":  state.open,
				"closeAccepting": state.close,
			}).Info("Market session state")
		}
	}
}

// subscribeAuditLog wires structured log lines for the money-moving events
func subscribeAuditLog(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		ev := e.(events.BalanceChangeEvent)
		log.WithFields(log.Fields{
			"walletID":     ev.WalletID,
			"userID":       ev.UserID,
			"amount":       ev.Amount,
			"balanceAfter": ev.BalanceAfter,
			"type":         ev.TransactionType,
		}).Info("Balance changed")
	})

	bus.Subscribe(events.EventTypeSettlementCompleted, func(ctx context.Context, e events.Event) {
		ev := e.(events.SettlementCompletedEvent)
		log.WithFields(log.Fields{
			"marketID":    ev.MarketID,
			"betDate":     ev.BetDate.Format("2006-01-02"),
			"session":     ev.Session,
			"won":         ev.Won,
			"lost":        ev.Lost,
			"totalPayout": ev.TotalPayout,
		}).Info("Settlement completed")
	})

	bus.Subscribe(events.EventTypeDepositApproved, func(ctx context.Context, e events.Event) {
		ev := e.(events.DepositApprovedEvent)
		log.WithFields(log.Fields{
			"depositID": ev.DepositID,
			"userID":    ev.UserID,
			"amount":    ev.Amount,
		}).Info("Deposit approved")
	})

	bus.Subscribe(events.EventTypeWithdrawalApproved, func(ctx context.Context, e events.Event) {
		ev := e.(events.WithdrawalApprovedEvent)
		log.WithFields(log.Fields{
			"withdrawalID": ev.WithdrawalID,
			"userID":       ev.UserID,
			"amount":       ev.Amount,
		}).Info("Withdrawal approved")
	})
}
