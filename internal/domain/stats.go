package domain

import "github.com/shopspring/decimal"

// Stats son los agregados del dashboard.
type Stats struct {
	TotalOpen     int     `json:"total_open"`
	TotalClosed   int     `json:"total_closed"`
	TakeProfits   int     `json:"take_profits"`
	StopLosses    int     `json:"stop_losses"`
	WinRate       float64 `json:"win_rate"`
	PnLTotalUSD   float64 `json:"pnl_total_usd"`
	CapitalActual float64 `json:"capital_actual"`
}

// ComputeStats calcula los agregados sobre todas las posiciones.
// El PnL realizado sólo cuenta posiciones cerradas.
func ComputeStats(positions []Position, bankroll float64) Stats {
	open, closed := SplitByStatus(positions)

	var s Stats
	s.TotalOpen = len(open)
	s.TotalClosed = len(closed)
	for _, p := range closed {
		switch p.CloseReason {
		case CloseTakeProfit:
			s.TakeProfits++
		case CloseStopLoss:
			s.StopLosses++
		}
	}

	s.WinRate = Round(float64(s.TakeProfits)/float64(max(s.TotalClosed, 1))*100, 1)

	pnl := SumPnL(closed)
	s.PnLTotalUSD = pnl.Round(4).InexactFloat64()
	s.CapitalActual = decimal.NewFromFloat(bankroll).Add(pnl).Round(4).InexactFloat64()
	return s
}
