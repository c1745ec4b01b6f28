package service

import (
	"fmt"

	"matka/models"
)

// MatchBid decides whether a bid's digit wins against the declared result,
// using the rule selected by the game type's category:
//
//	single        bid digit equals the session panel's digit sum mod 10
//	*_patti       bid digit equals the session panel itself
//	jodi          bid digit equals open digit followed by close digit
//	half_sangam   "D-PPP" (open digit, close panel) or "PPP-D" (open panel,
//	              close digit)
//	full_sangam   "PPP-PPP" (open panel, close panel)
//
// Categories that need both panels are only settleable once the close
// panel is declared; callers route those bids through close settlement.
func MatchBid(category models.GameCategory, session models.Session, result *models.Result, digit string) (bool, error) {
	switch category {
	case models.CategorySingle:
		if !result.Declared(session) {
			return false, ErrResultNotDeclared
		}
		winning, err := models.PanelDigit(result.Panel(session))
		if err != nil {
			return false, err
		}
		return digit == winning, nil

	case models.CategorySinglePatti, models.CategoryDoublePatti, models.CategoryTriplePatti:
		if !result.Declared(session) {
			return false, ErrResultNotDeclared
		}
		return digit == result.Panel(session), nil

	case models.CategoryJodi:
		winning, err := result.Jodi()
		if err != nil {
			return false, ErrResultNotDeclared
		}
		return digit == winning, nil

	case models.CategoryHalfSangam:
		openPanel, closePanel, openDigit, closeDigit, err := bothPanels(result)
		if err != nil {
			return false, err
		}
		return digit == openDigit+"-"+closePanel || digit == openPanel+"-"+closeDigit, nil

	case models.CategoryFullSangam:
		openPanel, closePanel, _, _, err := bothPanels(result)
		if err != nil {
			return false, err
		}
		return digit == openPanel+"-"+closePanel, nil
	}

	return false, fmt.Errorf("unknown game category %q", category)
}

func bothPanels(result *models.Result) (openPanel, closePanel, openDigit, closeDigit string, err error) {
	if result.OpenPanel == nil || result.ClosePanel == nil {
		return "", "", "", "", ErrResultNotDeclared
	}
	openPanel = *result.OpenPanel
	closePanel = *result.ClosePanel
	if openDigit, err = models.PanelDigit(openPanel); err != nil {
		return "", "", "", "", err
	}
	if closeDigit, err = models.PanelDigit(closePanel); err != nil {
		return "", "", "", "", err
	}
	return openPanel, closePanel, openDigit, closeDigit, nil
}
