package domain

import "time"

// PositionStatus represents the lifecycle of a paper position.
// Transitions only go OPEN -> CLOSED.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
)

// CloseReason records which exit fired.
type CloseReason string

const (
	CloseNone       CloseReason = ""
	CloseTakeProfit CloseReason = "TAKE_PROFIT"
	CloseStopLoss   CloseReason = "STOP_LOSS"
)

// MaxPriceHistory bounds Position.PriceHistory.
const MaxPriceHistory = 48

// PricePoint is one monitor sample.
type PricePoint struct {
	At    time.Time `json:"ts"`
	Price float64   `json:"price"`
}

// Position is a simulated holding on one moneyline outcome.
// Prices are probabilities in [0,1]. TakeProfit and StopLoss are fixed at open.
type Position struct {
	ID           string         `json:"id"`
	EventTitle   string         `json:"event"`
	Team         string         `json:"team"`
	TokenID      string         `json:"token_id"`
	EntryPrice   float64        `json:"entry_price"`
	CurrentPrice float64        `json:"current_price"`
	FairValue    float64        `json:"fair_value"`
	EntryEdge    float64        `json:"entry_edge"`
	TakeProfit   float64        `json:"take_profit"`
	StopLoss     float64        `json:"stop_loss"`
	Stake        float64        `json:"stake_usd"`
	StartTime    time.Time      `json:"start_time"`
	Status       PositionStatus `json:"status"`
	CloseReason  CloseReason    `json:"close_reason,omitempty"`
	OpenedAt     time.Time      `json:"opened_at"`
	ClosedAt     *time.Time     `json:"closed_at"`
	PnLPct       float64        `json:"pnl_pct"`
	PnLUSD       float64        `json:"pnl_usd"`
	PriceHistory []PricePoint   `json:"price_history"`
}

// NewPosition opens a position from a BUY opportunity.
// The stop-loss is the fair value at entry: the position exits once the
// market reprices up to it.
func NewPosition(id string, opp Opportunity, stake, takeProfit float64, now time.Time) Position {
	entry := Round(opp.MarketPrice/100, 4)
	fair := Round(opp.FairValue/100, 4)
	return Position{
		ID:           id,
		EventTitle:   opp.EventTitle,
		Team:         opp.Team,
		TokenID:      opp.TokenID,
		EntryPrice:   entry,
		CurrentPrice: entry,
		FairValue:    fair,
		EntryEdge:    opp.Edge,
		TakeProfit:   Round(takeProfit, 4),
		StopLoss:     fair,
		Stake:        stake,
		StartTime:    opp.StartTime,
		Status:       PositionOpen,
		OpenedAt:     now,
		PriceHistory: []PricePoint{{At: now, Price: entry}},
	}
}

// IsOpen reports whether the position is still being monitored.
func (p *Position) IsOpen() bool {
	return p.Status == PositionOpen
}

// ApplyPrice records a new midpoint and closes the position if an exit fires.
// Take-profit is checked before stop-loss. Closed positions are left untouched.
// Returns true if this call closed the position.
func (p *Position) ApplyPrice(price float64, now time.Time) bool {
	if !p.IsOpen() {
		return false
	}

	p.CurrentPrice = Round(price, 4)
	if p.EntryPrice > 0 {
		ret := (price - p.EntryPrice) / p.EntryPrice
		p.PnLPct = Round(ret*100, 2)
		p.PnLUSD = Round(p.Stake*ret, 4)
	}

	p.PriceHistory = append(p.PriceHistory, PricePoint{At: now, Price: price})
	if n := len(p.PriceHistory); n > MaxPriceHistory {
		p.PriceHistory = append([]PricePoint(nil), p.PriceHistory[n-MaxPriceHistory:]...)
	}

	switch {
	case price >= p.TakeProfit:
		p.close(CloseTakeProfit, now)
	case price >= p.StopLoss && price < p.TakeProfit:
		p.close(CloseStopLoss, now)
	default:
		return false
	}
	return true
}

func (p *Position) close(reason CloseReason, now time.Time) {
	p.Status = PositionClosed
	p.CloseReason = reason
	closedAt := now
	p.ClosedAt = &closedAt
}

// FindOpen returns the index of the OPEN position for tokenID, or -1.
func FindOpen(positions []Position, tokenID string) int {
	for i := range positions {
		if positions[i].TokenID == tokenID && positions[i].IsOpen() {
			return i
		}
	}
	return -1
}

// SplitByStatus separates open and closed positions, preserving order.
func SplitByStatus(positions []Position) (open, closed []Position) {
	open = make([]Position, 0)
	closed = make([]Position, 0)
	for _, p := range positions {
		if p.IsOpen() {
			open = append(open, p)
		} else {
			closed = append(closed, p)
		}
	}
	return open, closed
}
