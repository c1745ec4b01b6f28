package testutil

import (
	"time"

	"matka/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTestMarket creates a same-day market with default values
func CreateTestMarket(name string) *models.Market {
	return &models.Market{
		Name:           name,
		Type:           "day",
		OpenMinute:     600,  // 10:00
		CloseMinute:    720,  // 12:00
		BettingEnabled: true,
	}
}

// CreateTestOvernightMarket creates a market whose window crosses midnight
func CreateTestOvernightMarket(name string) *models.Market {
	market := CreateTestMarket(name)
	market.Type = "night"
	market.OpenMinute = 1320 // 22:00
	market.CloseMinute = 120 // 02:00
	return market
}

// CreateTestGameType creates a game type with default values
func CreateTestGameType(name string, category models.GameCategory, rate string) *models.GameType {
	return &models.GameType{
		Name:         name,
		Category:     category,
		Rate:         decimal.RequireFromString(rate),
		DigitPattern: patternFor(category),
	}
}

func patternFor(category models.GameCategory) string {
	switch category {
	case models.CategorySingle:
		return `^[0-9]$`
	case models.CategoryJodi:
		return `^[0-9]{2}$`
	case models.CategorySinglePatti, models.CategoryDoublePatti, models.CategoryTriplePatti:
		return `^[0-9]{3}$`
	case models.CategoryHalfSangam:
		return `^([0-9]-[0-9]{3}|[0-9]{3}-[0-9])$`
	case models.CategoryFullSangam:
		return `^[0-9]{3}-[0-9]{3}$`
	default:
		return `^[0-9]+$`
	}
}

// CreateTestBid creates a pending bid with default values
func CreateTestBid(userID, marketID, gameTypeID int64, betDate time.Time) *models.Bid {
	return &models.Bid{
		UserID:     userID,
		MarketID:   marketID,
		GameTypeID: gameTypeID,
		BetDate:    betDate,
		Session:    models.SessionOpen,
		Digit:      "5",
		Amount:     100,
		WinAmount:  decimal.Zero,
		Status:     models.BidStatusPending,
	}
}

// CreateTestDeposit creates a pending deposit request with default values
func CreateTestDeposit(userID int64, amount string) *models.Deposit {
	return &models.Deposit{
		UserID:    userID,
		Amount:    decimal.RequireFromString(amount),
		Reference: uuid.New(),
		Status:    models.RequestStatusPending,
	}
}

// CreateTestWithdrawRequest creates a pending withdrawal request with default values
func CreateTestWithdrawRequest(userID int64, amount string) *models.WithdrawRequest {
	return &models.WithdrawRequest{
		UserID:    userID,
		Amount:    decimal.RequireFromString(amount),
		Reference: uuid.New(),
		Account:   "upi:test@bank",
		Status:    models.RequestStatusPending,
	}
}
