package models

import (
	"github.com/shopspring/decimal"
)

// PolicySnapshot carries the mutable platform settings an operation needs,
// captured at call time. Passing it explicitly keeps settlement and ledger
// operations reproducible from historical config.
type PolicySnapshot struct {
	// BonusSpendable controls whether bonus funds count toward debit checks
	BonusSpendable bool

	// ReferralBonus is credited to the referrer's bonus balance on the
	// referred user's first approved deposit. Zero disables the program.
	ReferralBonus decimal.Decimal

	MinBidAmount      int64
	MinDepositAmount  decimal.Decimal
	MinWithdrawAmount decimal.Decimal
}
