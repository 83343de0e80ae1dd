package paper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/application/engine"
	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/alejandrodnm/nbaedge/internal/ports"
	"github.com/google/uuid"
)

const (
	defaultBankroll   = 100.0
	defaultRisk       = 0.01
	defaultTakeProfit = 0.42
)

// Config holds paper position settings.
type Config struct {
	MinFairValue float64 // fair value gate in [0,1]; FV must be strictly above it
	TakeProfit   float64 // fixed exit price in [0,1], same for every position
	Bankroll     float64
	RiskPerTrade float64 // fraction of bankroll staked per position
}

// Engine opens and monitors simulated positions.
type Engine struct {
	store   ports.StateStore
	prices  ports.PriceProvider
	metrics ports.Metrics
	cfg     Config
	now     func() time.Time
	newID   func() string
}

// New creates a paper engine. metrics may be nil.
func New(store ports.StateStore, prices ports.PriceProvider, metrics ports.Metrics, cfg Config) *Engine {
	if cfg.Bankroll <= 0 {
		cfg.Bankroll = defaultBankroll
	}
	if cfg.RiskPerTrade <= 0 {
		cfg.RiskPerTrade = defaultRisk
	}
	if cfg.TakeProfit <= 0 {
		cfg.TakeProfit = defaultTakeProfit
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Engine{
		store:   store,
		prices:  prices,
		metrics: metrics,
		cfg:     cfg,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// WithClock replaces the clock. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Stake returns the per-trade stake in USD.
func (e *Engine) Stake() float64 {
	return domain.StakeFor(e.cfg.Bankroll, e.cfg.RiskPerTrade)
}

// Open opens a position for a BUY opportunity.
//
// Returns (nil, nil) when the opportunity is not a BUY or its fair value does
// not clear MinFairValue. If an OPEN position already exists for the token it
// is returned unchanged.
func (e *Engine) Open(ctx context.Context, opp domain.Opportunity) (*domain.Position, error) {
	if !opp.IsBuy() {
		return nil, nil
	}
	if opp.FairProbability() <= e.cfg.MinFairValue {
		slog.Info("paper: skipped, fair value below minimum",
			"team", opp.Team,
			"fair_value", fmt.Sprintf("%.4f", opp.FairProbability()),
			"min", e.cfg.MinFairValue,
		)
		return nil, nil
	}

	var (
		result  domain.Position
		created bool
	)
	err := e.store.UpdatePositions(ctx, func(positions []domain.Position) ([]domain.Position, error) {
		if i := domain.FindOpen(positions, opp.TokenID); i >= 0 {
			result = positions[i]
			return positions, nil
		}
		result = domain.NewPosition(e.newID(), opp, e.Stake(), e.cfg.TakeProfit, e.now())
		created = true
		return append(positions, result), nil
	})
	if err != nil {
		return nil, fmt.Errorf("paper.Open: %w", err)
	}

	if !created {
		slog.Debug("paper: position already open", "team", opp.Team, "token", result.TokenID)
		return &result, nil
	}

	e.metrics.PositionOpened()
	slog.Info("paper: position opened",
		"team", result.Team,
		"event", engine.TruncateStr(result.EventTitle, 40),
		"entry", fmt.Sprintf("%.4f", result.EntryPrice),
		"take_profit", fmt.Sprintf("%.2f", result.TakeProfit),
		"stop_loss", fmt.Sprintf("%.4f", result.StopLoss),
		"stake", fmt.Sprintf("$%.2f", result.Stake),
	)
	return &result, nil
}

// OpenAll opens a position for every BUY in opps, in order.
// A failure on one opportunity is logged and does not stop the rest.
func (e *Engine) OpenAll(ctx context.Context, opps []domain.Opportunity) []domain.Position {
	var opened []domain.Position
	for _, opp := range opps {
		pos, err := e.Open(ctx, opp)
		if err != nil {
			slog.Warn("paper: open failed", "team", opp.Team, "err", err)
			continue
		}
		if pos != nil {
			opened = append(opened, *pos)
		}
	}
	return opened
}

// Monitor refreshes every OPEN position with the latest midpoint and closes
// the ones that hit take-profit or stop-loss. Positions without a quote this
// cycle are left as they were.
func (e *Engine) Monitor(ctx context.Context) (domain.MonitorResult, error) {
	start := time.Now()
	var result domain.MonitorResult

	positions, err := e.store.LoadPositions(ctx)
	if err != nil {
		return result, fmt.Errorf("paper.Monitor: load: %w", err)
	}

	open, _ := domain.SplitByStatus(positions)
	if len(open) == 0 {
		e.metrics.OpenPositions(0)
		result.Duration = time.Since(start)
		return result, nil
	}

	requested := make(map[string]bool, len(open))
	ids := make([]string, 0, len(open))
	for _, p := range open {
		if !requested[p.TokenID] {
			requested[p.TokenID] = true
			ids = append(ids, p.TokenID)
		}
	}
	prices := e.prices.FetchMidpoints(ctx, ids)
	e.metrics.PricesFetched(len(ids), len(prices))

	now := e.now()
	err = e.store.UpdatePositions(ctx, func(positions []domain.Position) ([]domain.Position, error) {
		result = domain.MonitorResult{}
		for i := range positions {
			p := &positions[i]
			if !p.IsOpen() || !requested[p.TokenID] {
				continue
			}
			result.Checked++

			price, ok := prices[p.TokenID]
			if !ok {
				result.Missing++
				slog.Warn("paper: no price, position unchanged", "team", p.Team, "token", p.TokenID)
				continue
			}
			result.Updated++
			if p.ApplyPrice(price, now) {
				result.Closed = append(result.Closed, *p)
			}
		}
		for _, p := range positions {
			if p.IsOpen() {
				result.Open++
			}
		}
		return positions, nil
	})
	if err != nil {
		return domain.MonitorResult{}, fmt.Errorf("paper.Monitor: %w", err)
	}

	for _, p := range result.Closed {
		e.metrics.PositionClosed(p.CloseReason)
		slog.Info("paper: position closed",
			"reason", p.CloseReason,
			"team", p.Team,
			"entry", fmt.Sprintf("%.4f", p.EntryPrice),
			"exit", fmt.Sprintf("%.4f", p.CurrentPrice),
			"pnl_pct", fmt.Sprintf("%+.2f%%", p.PnLPct),
			"pnl_usd", fmt.Sprintf("$%+.4f", p.PnLUSD),
		)
	}
	e.metrics.OpenPositions(result.Open)

	result.Duration = time.Since(start)
	return result, nil
}
