package service

import (
	"testing"
	"time"

	"matka/models"

	"github.com/stretchr/testify/assert"
)

func minute(hh, mm int) models.MinuteOfDay {
	return models.MinuteOfDay(hh*60 + mm)
}

func TestSessionState_SameDayWindow(t *testing.T) {
	// Market opens 10:00, closes 12:00
	openM := minute(10, 0)
	closeM := minute(12, 0)

	tests := []struct {
		name           string
		current        models.MinuteOfDay
		openAccepting  bool
		closeAccepting bool
	}{
		{"well before open", minute(8, 0), true, true},
		{"one minute before open", minute(9, 59), true, true},
		{"exactly at open time", minute(10, 0), false, true},
		{"between open and close", minute(11, 0), false, true},
		{"one minute before close", minute(11, 59), false, true},
		{"exactly at close time", minute(12, 0), false, false},
		{"after close", minute(13, 0), false, false},
		{"midnight", minute(0, 0), true, true},
		{"end of day", minute(23, 59), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := sessionStateAt(openM, closeM, tt.current)
			assert.Equal(t, tt.openAccepting, state.OpenAccepting, "open accepting")
			assert.Equal(t, tt.closeAccepting, state.CloseAccepting, "close accepting")
		})
	}
}

func TestSessionState_OvernightWindow(t *testing.T) {
	// Market opens 22:00, closes 02:00 the next day
	openM := minute(22, 0)
	closeM := minute(2, 0)

	tests := []struct {
		name           string
		current        models.MinuteOfDay
		openAccepting  bool
		closeAccepting bool
	}{
		{"evening before open", minute(20, 0), true, false},
		{"one minute before open", minute(21, 59), true, false},
		{"exactly at open time", minute(22, 0), false, true},
		{"late evening after open", minute(23, 0), false, true},
		{"past midnight", minute(1, 0), false, true},
		{"exactly at close time", minute(2, 0), false, true},
		{"one minute past close", minute(2, 1), true, false},
		{"morning after close", minute(3, 0), true, false},
		{"midday", minute(12, 0), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := sessionStateAt(openM, closeM, tt.current)
			assert.Equal(t, tt.openAccepting, state.OpenAccepting, "open accepting")
			assert.Equal(t, tt.closeAccepting, state.CloseAccepting, "close accepting")
		})
	}
}

func TestBettingDay(t *testing.T) {
	dayMarket := &models.Market{
		OpenMinute:  minute(10, 0),
		CloseMinute: minute(12, 0),
	}
	nightMarket := &models.Market{
		OpenMinute:  minute(22, 0),
		CloseMinute: minute(2, 0),
	}

	at := func(day, hh, mm int) time.Time {
		return time.Date(2026, 3, day, hh, mm, 0, 0, time.UTC)
	}
	march := func(day int) time.Time {
		return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		market *models.Market
		now    time.Time
		want   time.Time
	}{
		{"same-day market, morning", dayMarket, at(2, 9, 0), march(2)},
		{"same-day market, after close", dayMarket, at(2, 13, 0), march(2)},
		{"overnight market, before open", nightMarket, at(2, 20, 0), march(2)},
		{"overnight market, after open", nightMarket, at(2, 23, 0), march(2)},
		// Past midnight the close window is still taking stakes on the day
		// that opened the previous evening.
		{"overnight market, past midnight", nightMarket, at(3, 1, 0), march(2)},
		{"overnight market, exactly at close", nightMarket, at(3, 2, 0), march(2)},
		{"overnight market, one minute past close", nightMarket, at(3, 2, 1), march(3)},
		{"overnight market, midday", nightMarket, at(3, 12, 0), march(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BettingDay(tt.market, tt.now))
		})
	}
}

func TestSessionState_DateIndependence(t *testing.T) {
	market := &models.Market{
		OpenMinute:  minute(10, 0),
		CloseMinute: minute(12, 0),
	}

	// Same wall-clock time on different days yields the same state
	monday := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 8, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, ComputeSessionState(market, monday), ComputeSessionState(market, sunday))
	assert.True(t, ComputeSessionState(market, monday).OpenAccepting)
}

func TestSessionState_MarketOpen(t *testing.T) {
	state := models.SessionState{OpenAccepting: false, CloseAccepting: true}
	assert.True(t, state.MarketOpen())
	assert.False(t, state.Accepting(models.SessionOpen))
	assert.True(t, state.Accepting(models.SessionClose))

	closed := models.SessionState{}
	assert.False(t, closed.MarketOpen())
}

func TestParseMinuteOfDay(t *testing.T) {
	m, err := models.ParseMinuteOfDay("09:15")
	assert.NoError(t, err)
	assert.Equal(t, minute(9, 15), m)
	assert.Equal(t, "09:15", m.String())

	_, err = models.ParseMinuteOfDay("24:00")
	assert.Error(t, err)

	_, err = models.ParseMinuteOfDay("nonsense")
	assert.Error(t, err)
}
