package domain

import "github.com/shopspring/decimal"

// Round redondea x a places decimales (mitad lejos de cero).
func Round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// StakeFor es el monto por trade: bankroll × riesgo, a centavos.
func StakeFor(bankroll, risk float64) float64 {
	return decimal.NewFromFloat(bankroll).
		Mul(decimal.NewFromFloat(risk)).
		Round(2).
		InexactFloat64()
}

// SumPnL suma el PnL en USD sin acumular error de coma flotante.
func SumPnL(positions []Position) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(decimal.NewFromFloat(p.PnLUSD))
	}
	return total
}
