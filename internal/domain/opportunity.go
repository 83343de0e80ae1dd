package domain

import "time"

// Opportunity es un resultado de moneyline con señal BUY o AVOID.
// Precios en escala 0-100. Se crea en cada scan y no se modifica.
type Opportunity struct {
	EventTitle  string    `json:"event"`
	Team        string    `json:"team"`
	IsHome      bool      `json:"is_home"`
	MarketPrice float64   `json:"market_price"` // P_poly
	FairValue   float64   `json:"fair_value"`
	Edge        float64   `json:"edge"` // NEA
	Signal      Signal    `json:"signal"`
	StartTime   time.Time `json:"start_time"`
	TokenID     string    `json:"token_id"`
	Summary     string    `json:"summary"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// IsBuy devuelve true si la oportunidad debe abrir posición.
func (o Opportunity) IsBuy() bool {
	return o.Signal == SignalBuy
}

// FairProbability devuelve el valor real como probabilidad 0-1.
func (o Opportunity) FairProbability() float64 {
	return o.FairValue / 100
}
