package models

import (
	"fmt"
	"time"
)

// Session identifies one of a market's two daily betting windows
type Session string

const (
	SessionOpen  Session = "open"
	SessionClose Session = "close"
)

// Valid reports whether the session is one of the two known windows
func (s Session) Valid() bool {
	return s == SessionOpen || s == SessionClose
}

// MinuteOfDay is a time of day at minute resolution (0..1439)
type MinuteOfDay int

// ParseMinuteOfDay parses a "HH:MM" clock time into minutes since midnight
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return MinuteOfDay(t.Hour()*60 + t.Minute()), nil
}

// String formats the minute of day as "HH:MM"
func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Market represents a betting market with two daily result sessions.
// OpenMinute and CloseMinute are times of day; a market whose close time is
// numerically earlier than its open time spans midnight.
type Market struct {
	ID             int64       `db:"id"`
	Name           string      `db:"name"`
	Type           string      `db:"market_type"`
	OpenMinute     MinuteOfDay `db:"open_minute"`
	CloseMinute    MinuteOfDay `db:"close_minute"`
	BettingEnabled bool        `db:"betting_enabled"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

// Overnight reports whether the market's window wraps past midnight
func (m *Market) Overnight() bool {
	return m.OpenMinute > m.CloseMinute
}

// SessionState is the derived accepting-bids state of a market's two
// sessions at a particular instant. It is a pure projection, never persisted.
type SessionState struct {
	OpenAccepting  bool
	CloseAccepting bool
}

// MarketOpen reports whether either session currently accepts bids
func (s SessionState) MarketOpen() bool {
	return s.OpenAccepting || s.CloseAccepting
}

// Accepting returns the accepting flag for the given session
func (s SessionState) Accepting(session Session) bool {
	if session == SessionOpen {
		return s.OpenAccepting
	}
	return s.CloseAccepting
}

// MarketStatus pairs a market with its live session state for listings
type MarketStatus struct {
	Market *Market
	State  SessionState
}
