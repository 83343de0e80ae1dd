package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNews_Bounds(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeNews(-100))
	assert.Equal(t, 50.0, NormalizeNews(0))
	assert.Equal(t, 100.0, NormalizeNews(100))
}

func TestNormalizeNews_RoundTrip(t *testing.T) {
	for _, n := range []float64{-100, -73.5, -10, 0, 20, 99.9, 100} {
		assert.InDelta(t, n, DenormalizeNews(NormalizeNews(n)), 1e-9)
	}
}

func TestFairValue_Formula(t *testing.T) {
	// 0.45·55 + 0.40·60 + 0.10·5 + 0.05·60 = 24.75 + 24 + 0.5 + 3
	assert.InDelta(t, 52.25, FairValue(55, 60, VenueHome, 60), 1e-9)
	// 0.45·45 + 0.40·45 - 0.5 + 0.05·40 = 20.25 + 18 - 0.5 + 2
	assert.InDelta(t, 39.75, FairValue(45, 45, VenueAway, 40), 1e-9)
}

func TestEdge_Sign(t *testing.T) {
	assert.InDelta(t, -22.25, Edge(30, 52.25), 1e-9)
	assert.InDelta(t, 32.25, Edge(72, 39.75), 1e-9)
}

func TestClassifyEdge_InclusiveBoundaries(t *testing.T) {
	assert.Equal(t, SignalBuy, ClassifyEdge(-10, 10))
	assert.Equal(t, SignalAvoid, ClassifyEdge(10, 10))
	assert.Equal(t, SignalNone, ClassifyEdge(-9.99, 10))
	assert.Equal(t, SignalNone, ClassifyEdge(9.99, 10))
	assert.Equal(t, SignalNone, ClassifyEdge(0, 10))
	assert.Equal(t, SignalBuy, ClassifyEdge(-40, 10))
}

func lakersCeltics() EventMarkets {
	start := time.Date(2026, 1, 15, 0, 30, 0, 0, time.UTC)
	ev := Event{
		ID:        "ev1",
		Title:     "Lakers vs. Celtics",
		StartTime: start,
		EventDate: "2026-01-14",
	}
	return EventMarkets{
		Event: ev,
		Markets: map[Category]Contract{
			CategoryMoneyline: {
				Category: CategoryMoneyline,
				Question: "Lakers vs. Celtics",
				TokenIDs: []string{"tokA", "tokB"},
				Labels:   []string{"Lakers", "Celtics"},
			},
		},
	}
}

func lakersAnalysis() Analysis {
	return Analysis{PVegas: 55, NewsHome: 20, NewsAway: -10, FormHome: 60, FormAway: 40, Summary: "ok"}
}

func TestScoreMoneyline_LakersCeltics(t *testing.T) {
	now := time.Date(2026, 1, 14, 14, 0, 0, 0, time.UTC)
	prices := map[string]float64{"tokA": 0.30, "tokB": 0.72}

	opps := ScoreMoneyline(lakersCeltics(), "Lakers", lakersAnalysis(), prices, 10, now)
	SortByEdge(opps)
	require.Len(t, opps, 2)

	// |32.25| > |-22.25|
	celtics, lakers := opps[0], opps[1]

	assert.Equal(t, "Celtics", celtics.Team)
	assert.False(t, celtics.IsHome)
	assert.Equal(t, SignalAvoid, celtics.Signal)
	assert.Equal(t, 72.0, celtics.MarketPrice)
	assert.Equal(t, 39.75, celtics.FairValue)
	assert.Equal(t, 32.25, celtics.Edge)
	assert.Equal(t, "tokB", celtics.TokenID)

	assert.Equal(t, "Lakers", lakers.Team)
	assert.True(t, lakers.IsHome)
	assert.Equal(t, SignalBuy, lakers.Signal)
	assert.Equal(t, 30.0, lakers.MarketPrice)
	assert.Equal(t, 52.25, lakers.FairValue)
	assert.Equal(t, -22.25, lakers.Edge)
	assert.Equal(t, "ok", lakers.Summary)
	assert.Equal(t, now, lakers.ScannedAt)
	assert.Equal(t, lakersCeltics().Event.StartTime, lakers.StartTime)
}

func TestScoreMoneyline_MissingPriceSkipsOutcome(t *testing.T) {
	prices := map[string]float64{"tokB": 0.72}
	opps := ScoreMoneyline(lakersCeltics(), "Lakers", lakersAnalysis(), prices, 10, time.Now())
	require.Len(t, opps, 1)
	assert.Equal(t, "Celtics", opps[0].Team)
}

func TestScoreMoneyline_BelowThresholdEmitsNothing(t *testing.T) {
	prices := map[string]float64{"tokA": 0.30, "tokB": 0.72}
	opps := ScoreMoneyline(lakersCeltics(), "Lakers", lakersAnalysis(), prices, 40, time.Now())
	assert.Empty(t, opps)
}

func TestScoreMoneyline_NoMoneyline(t *testing.T) {
	em := lakersCeltics()
	em.Markets = map[Category]Contract{}
	assert.Nil(t, ScoreMoneyline(em, "Lakers", lakersAnalysis(), map[string]float64{"tokA": 0.3}, 10, time.Now()))
}

func TestScoreMoneyline_Deterministic(t *testing.T) {
	now := time.Now()
	prices := map[string]float64{"tokA": 0.30, "tokB": 0.72}
	a := ScoreMoneyline(lakersCeltics(), "Lakers", lakersAnalysis(), prices, 10, now)
	b := ScoreMoneyline(lakersCeltics(), "Lakers", lakersAnalysis(), prices, 10, now)
	assert.Equal(t, a, b)
}

func TestSortByEdge_Stable(t *testing.T) {
	opps := []Opportunity{
		{Team: "a", Edge: 12},
		{Team: "b", Edge: -30},
		{Team: "c", Edge: -12},
		{Team: "d", Edge: 20},
	}
	SortByEdge(opps)
	var teams []string
	for _, o := range opps {
		teams = append(teams, o.Team)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, teams)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 52.25, Round(52.249999999, 2))
	assert.Equal(t, 0.5225, Round(0.52250000001, 4))
	assert.Equal(t, 1.0, StakeFor(100, 0.01))
	assert.Equal(t, 2.5, StakeFor(250, 0.01))
}
