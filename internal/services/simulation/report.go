package simulation

import "WalkSim/internal/domain/models"

// ROI is the raw window-total return in percent.
func ROI(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return (final/initial - 1) * 100
}

// BuyAndHold buys initial/close[0] shares on the first day and holds them
// through the last day.
func BuyAndHold(window []models.Bar, initial float64) models.BuyAndHold {
	out := models.BuyAndHold{InitialBalance: initial, FinalBalance: initial}
	if len(window) == 0 || window[0].Close <= 0 {
		return out
	}
	shares := initial / window[0].Close
	out.FinalBalance = shares * window[len(window)-1].Close
	out.ROIPercentage = ROI(initial, out.FinalBalance)
	return out
}

// Assemble builds the result from a completed ledger.
func Assemble(req Request, window []models.Bar, l *Ledger) *models.SimulationResult {
	res := &models.SimulationResult{
		Symbol:         req.Symbol,
		Days:           req.Days,
		InitialBalance: req.InitialBalance,
		FinalBalance:   l.Final,
		ROIPercentage:  ROI(req.InitialBalance, l.Final),
		Trades:         l.Trades,
		DailyBalance:   l.Points,
		BuyAndHold:     BuyAndHold(window, req.InitialBalance),
		Strategy:       models.StrategyAIPrediction,
	}
	if len(window) > 0 {
		res.StartDate = window[0].Date
		res.EndDate = window[len(window)-1].Date
	}
	return res
}
