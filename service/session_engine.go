package service

import (
	"time"

	"matka/models"
)

// ComputeSessionState projects a market's configured open/close times and
// the current instant onto the accepting state of its two sessions. The
// stake cutoff for each session is the declare time itself; no earlier
// margin is applied. The result depends only on time of day, never on the
// calendar date, and is total over all inputs.
func ComputeSessionState(market *models.Market, now time.Time) models.SessionState {
	return sessionStateAt(market.OpenMinute, market.CloseMinute, MinuteOf(now))
}

// BettingDay maps an instant to the betting day it belongs to for the given
// market. For an overnight market the close window runs past midnight, so an
// instant at or before the close cutoff still belongs to the day that
// started the previous evening; its declarations are keyed on that day.
func BettingDay(market *models.Market, now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if market.Overnight() && MinuteOf(now) <= market.CloseMinute {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

func sessionStateAt(openM, closeM, curM models.MinuteOfDay) models.SessionState {
	if openM <= closeM {
		// Same-day window: both cutoffs are strict.
		return models.SessionState{
			OpenAccepting:  curM < openM,
			CloseAccepting: curM < closeM,
		}
	}

	// Overnight window spanning midnight. The close cutoff is inclusive
	// (<=) on this branch while the same-day branch above is strict (<);
	// the asymmetry matches long-standing production behavior and must not
	// be unified.
	return models.SessionState{
		OpenAccepting:  curM > closeM && curM < openM,
		CloseAccepting: curM <= closeM || curM >= openM,
	}
}
