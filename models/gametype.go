package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameCategory selects the digit-matching rule used at settlement
type GameCategory string

const (
	CategorySingle      GameCategory = "single"
	CategoryJodi        GameCategory = "jodi"
	CategorySinglePatti GameCategory = "single_patti"
	CategoryDoublePatti GameCategory = "double_patti"
	CategoryTriplePatti GameCategory = "triple_patti"
	CategoryHalfSangam  GameCategory = "half_sangam"
	CategoryFullSangam  GameCategory = "full_sangam"
)

// NeedsBothPanels reports whether the category matches against the combined
// open+close result rather than a single session's panel. Such bids are
// carried with session=close and settle when the close panel is declared.
func (c GameCategory) NeedsBothPanels() bool {
	switch c {
	case CategoryJodi, CategoryHalfSangam, CategoryFullSangam:
		return true
	}
	return false
}

// GameType is the configuration row defining a bid's payout rate and digit
// format. The matching rule is selected by Category; the accepted digit
// format is the DigitPattern regular expression.
type GameType struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	Category     GameCategory    `db:"category"`
	Rate         decimal.Decimal `db:"rate"`
	DigitPattern string          `db:"digit_pattern"`
	CreatedAt    time.Time       `db:"created_at"`
}
