package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/adapters/notify"
	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scanAt = time.Date(2026, 1, 14, 14, 0, 0, 0, time.UTC)

func lakersReport() domain.ScanReport {
	em := domain.EventMarkets{
		Event: domain.Event{
			ID:        "ev1",
			Title:     "Celtics vs. Lakers",
			StartTime: time.Date(2026, 1, 15, 0, 30, 0, 0, time.UTC),
			EventDate: "2026-01-14",
		},
		Markets: map[domain.Category]domain.Contract{
			domain.CategoryMoneyline: {
				Category: domain.CategoryMoneyline,
				Question: "Celtics vs. Lakers",
				TokenIDs: []string{"tokB", "tokA"},
				Labels:   []string{"Celtics", "Lakers"},
			},
			domain.CategorySpread: {
				Category: domain.CategorySpread,
				Question: "Spread: Celtics (-4.5)",
				TokenIDs: []string{"sprB", "sprA"},
				Labels:   []string{"Celtics", "Lakers"},
			},
			domain.CategoryTotal: {
				Category: domain.CategoryTotal,
				Question: "Celtics vs. Lakers: O/U 224.5",
				TokenIDs: []string{"over", "under"},
				Labels:   []string{"Over", "Under"},
			},
		},
	}
	analysis := domain.Analysis{PVegas: 55, NewsHome: 20, NewsAway: -10, FormHome: 60, FormAway: 40, Summary: "Lakers con plantilla completa"}
	prices := map[string]float64{"tokA": 0.30, "tokB": 0.72, "sprA": 0.48, "sprB": 0.52, "over": 0.51, "under": 0.49}

	opps := domain.ScoreMoneyline(em, "Lakers", analysis, prices, 10, scanAt)
	domain.SortByEdge(opps)

	return domain.ScanReport{
		At:   scanAt,
		Date: "2026-01-14",
		Events: []domain.EventReport{
			{Markets: em, Home: "Lakers", Away: "Celtics", Analysis: analysis},
		},
		Prices:        prices,
		Opportunities: opps,
	}
}

func TestConsole_NotifyScan_Compact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.NotifyScan(context.Background(), lakersReport()))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"), "compact mode prints a single line")
	assert.Contains(t, out, "14:00:00")
	assert.Contains(t, out, "BUY:1 AVOID:1")
	assert.Contains(t, out, "BUY Lakers 30¢")
	assert.Contains(t, out, "AVOID Celtics 72¢")
}

func TestConsole_NotifyScan_Table(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, n.NotifyScan(context.Background(), lakersReport()))

	out := buf.String()
	assert.Contains(t, out, "Celtics vs. Lakers")
	assert.Contains(t, out, "Lakers con plantilla completa")
	assert.Contains(t, out, "-22.25")
	assert.Contains(t, out, "+32.25")
	assert.Contains(t, out, "SPREAD")
	assert.Contains(t, out, "Celtics -4.5 → 52¢")
	assert.Contains(t, out, "Lakers +4.5 → 48¢")
	assert.Contains(t, out, "O 224.5 → 51¢")
	assert.Contains(t, out, "U 224.5 → 49¢")
	assert.Contains(t, out, "OPPORTUNITIES (2)")
}

func TestConsole_NotifyScan_FallbackAnalysisFlagged(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	r := lakersReport()
	r.Events[0].Analysis = domain.DefaultAnalysis(0.30)
	r.Opportunities = nil

	require.NoError(t, n.NotifyScan(context.Background(), r))
	out := buf.String()
	assert.Contains(t, out, "análisis por defecto")
	assert.Contains(t, out, "No opportunities above ±10 NEA")
}

func TestConsole_NotifyScan_NoGames(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	err := n.NotifyScan(context.Background(), domain.ScanReport{At: scanAt, Date: "2026-01-14"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no games found for 2026-01-14")
}

func TestConsole_MissingPriceShowsNA(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	r := lakersReport()
	delete(r.Prices, "tokB")
	require.NoError(t, n.NotifyScan(context.Background(), r))
	assert.Contains(t, buf.String(), "n/a")
}

func TestConsole_PrintPositionsReport(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	opp := lakersReport().Opportunities[1]
	require.Equal(t, "Lakers", opp.Team)

	open := domain.NewPosition("p1", opp, 1.0, 0.42, scanAt)
	closed := domain.NewPosition("p2", opp, 1.0, 0.42, scanAt)
	closed.ApplyPrice(0.45, scanAt.Add(time.Hour))

	positions := []domain.Position{open, closed}
	n.PrintPositionsReport(positions, domain.ComputeStats(positions, 100))

	out := buf.String()
	assert.Contains(t, out, "PAPER POSITIONS REPORT")
	assert.Contains(t, out, "open: 1 | closed: 1 | TP: 1 | SL: 0")
	assert.Contains(t, out, "OPEN")
	assert.Contains(t, out, "CLOSED")
	assert.Contains(t, out, "TAKE_PROFIT")
	assert.Contains(t, out, "capital: $100.5000")
}

func TestConsole_PrintPositionsReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PrintPositionsReport(nil, domain.ComputeStats(nil, 100))
	assert.Contains(t, buf.String(), "No paper positions yet")
}

func TestConsole_PrintMonitorStatus(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	p := domain.NewPosition("p1", lakersReport().Opportunities[1], 1.0, 0.42, scanAt)
	p.ApplyPrice(0.45, scanAt.Add(time.Hour))

	n.PrintMonitorStatus(domain.MonitorResult{Checked: 2, Updated: 1, Missing: 1, Closed: []domain.Position{p}, Open: 1})
	out := buf.String()
	assert.Contains(t, out, "[PAPER] 1 open | 2 checked | 1 updated | 1 no price | 1 closed")
	assert.Contains(t, out, ">> TAKE_PROFIT Lakers")
}
