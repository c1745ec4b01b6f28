package service

import (
	"fmt"
	"time"

	"matka/models"
)

// Clock supplies the current wall time in the market timezone. Injected so
// session-state tests can pin the instant.
type Clock interface {
	Now() time.Time
}

type realClock struct {
	loc *time.Location
}

// NewClock creates a Clock fixed to the given IANA timezone
func NewClock(timezone string) (Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &realClock{loc: loc}, nil
}

func (c *realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// fixedClock always reports the same instant; test helper
type fixedClock struct {
	now time.Time
}

// NewFixedClock returns a Clock pinned to the given instant
func NewFixedClock(now time.Time) Clock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// MinuteOf reduces an instant to its time of day at minute resolution
func MinuteOf(t time.Time) models.MinuteOfDay {
	return models.MinuteOfDay(t.Hour()*60 + t.Minute())
}
