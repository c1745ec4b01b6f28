package service

import (
	"errors"
	"testing"

	"matka/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultWith(openPanel, closePanel string) *models.Result {
	result := &models.Result{}
	if openPanel != "" {
		result.OpenPanel = &openPanel
	}
	if closePanel != "" {
		result.ClosePanel = &closePanel
	}
	return result
}

func TestMatchBid_Single(t *testing.T) {
	// 1+2+8 = 11, digit 1
	result := resultWith("128", "")

	won, err := MatchBid(models.CategorySingle, models.SessionOpen, result, "1")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = MatchBid(models.CategorySingle, models.SessionOpen, result, "2")
	require.NoError(t, err)
	assert.False(t, won)

	// 5+7+0 = 12, digit 2
	result = resultWith("128", "570")
	won, err = MatchBid(models.CategorySingle, models.SessionClose, result, "2")
	require.NoError(t, err)
	assert.True(t, won)
}

func TestMatchBid_Patti(t *testing.T) {
	result := resultWith("128", "570")

	for _, category := range []models.GameCategory{
		models.CategorySinglePatti,
		models.CategoryDoublePatti,
		models.CategoryTriplePatti,
	} {
		won, err := MatchBid(category, models.SessionOpen, result, "128")
		require.NoError(t, err)
		assert.True(t, won, "%s should match the open panel", category)

		won, err = MatchBid(category, models.SessionClose, result, "128")
		require.NoError(t, err)
		assert.False(t, won, "%s close session matches the close panel", category)
	}
}

func TestMatchBid_Jodi(t *testing.T) {
	// open 128 -> 1, close 570 -> 2
	result := resultWith("128", "570")

	won, err := MatchBid(models.CategoryJodi, models.SessionClose, result, "12")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = MatchBid(models.CategoryJodi, models.SessionClose, result, "21")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMatchBid_HalfSangam(t *testing.T) {
	result := resultWith("128", "570")

	// open digit + close panel
	won, err := MatchBid(models.CategoryHalfSangam, models.SessionClose, result, "1-570")
	require.NoError(t, err)
	assert.True(t, won)

	// open panel + close digit
	won, err = MatchBid(models.CategoryHalfSangam, models.SessionClose, result, "128-2")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = MatchBid(models.CategoryHalfSangam, models.SessionClose, result, "2-128")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMatchBid_FullSangam(t *testing.T) {
	result := resultWith("128", "570")

	won, err := MatchBid(models.CategoryFullSangam, models.SessionClose, result, "128-570")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = MatchBid(models.CategoryFullSangam, models.SessionClose, result, "570-128")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMatchBid_UndeclaredResult(t *testing.T) {
	openOnly := resultWith("128", "")

	_, err := MatchBid(models.CategorySingle, models.SessionClose, openOnly, "1")
	assert.True(t, errors.Is(err, ErrResultNotDeclared), "got %v", err)

	_, err = MatchBid(models.CategoryJodi, models.SessionClose, openOnly, "12")
	assert.True(t, errors.Is(err, ErrResultNotDeclared), "got %v", err)

	_, err = MatchBid(models.CategoryFullSangam, models.SessionClose, openOnly, "128-570")
	assert.True(t, errors.Is(err, ErrResultNotDeclared), "got %v", err)
}

func TestMatchBid_UnknownCategory(t *testing.T) {
	result := resultWith("128", "570")
	_, err := MatchBid(models.GameCategory("teen_patti"), models.SessionOpen, result, "1")
	assert.Error(t, err)
}

func TestPanelDigit(t *testing.T) {
	digit, err := models.PanelDigit("128")
	require.NoError(t, err)
	assert.Equal(t, "1", digit)

	// 0+0+0 = 0
	digit, err = models.PanelDigit("000")
	require.NoError(t, err)
	assert.Equal(t, "0", digit)

	// 9+9+9 = 27, digit 7
	digit, err = models.PanelDigit("999")
	require.NoError(t, err)
	assert.Equal(t, "7", digit)

	_, err = models.PanelDigit("12")
	assert.Error(t, err)

	_, err = models.PanelDigit("12a")
	assert.Error(t, err)
}
