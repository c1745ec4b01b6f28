package models

import (
	"fmt"
	"time"
)

// Result holds the declared winning panels for one market and betting day.
// Each session's panel stays nil until that session's result is published;
// an overnight market's close panel may be published after midnight relative
// to BetDate.
type Result struct {
	ID         int64      `db:"id"`
	MarketID   int64      `db:"market_id"`
	BetDate    time.Time  `db:"bet_date"`
	OpenPanel  *string    `db:"open_panel"`
	ClosePanel *string    `db:"close_panel"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// Declared reports whether the given session's panel has been published
func (r *Result) Declared(session Session) bool {
	if session == SessionOpen {
		return r.OpenPanel != nil
	}
	return r.ClosePanel != nil
}

// Panel returns the declared panel for the session, or "" if undeclared
func (r *Result) Panel(session Session) string {
	if session == SessionOpen {
		if r.OpenPanel == nil {
			return ""
		}
		return *r.OpenPanel
	}
	if r.ClosePanel == nil {
		return ""
	}
	return *r.ClosePanel
}

// PanelDigit derives a panel's single digit: the digit sum mod 10.
// "128" -> 1+2+8 = 11 -> "1".
func PanelDigit(panel string) (string, error) {
	if len(panel) != 3 {
		return "", fmt.Errorf("panel must be exactly 3 digits, got %q", panel)
	}
	sum := 0
	for _, c := range panel {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("panel must be numeric, got %q", panel)
		}
		sum += int(c - '0')
	}
	return string(rune('0' + sum%10)), nil
}

// Jodi derives the two-digit pair from both declared panels. It is only
// defined once both sessions are declared.
func (r *Result) Jodi() (string, error) {
	if r.OpenPanel == nil || r.ClosePanel == nil {
		return "", fmt.Errorf("jodi requires both panels declared")
	}
	open, err := PanelDigit(*r.OpenPanel)
	if err != nil {
		return "", err
	}
	closeDigit, err := PanelDigit(*r.ClosePanel)
	if err != nil {
		return "", err
	}
	return open + closeDigit, nil
}
