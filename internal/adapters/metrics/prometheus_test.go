package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/adapters/metrics"
	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/alejandrodnm/nbaedge/internal/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Metrics = (*metrics.Recorder)(nil)

func TestRecorder_Counters(t *testing.T) {
	r := metrics.NewRecorder()

	r.ScanCompleted(3, 2, 4*time.Second)
	r.ScanFailed()
	r.PositionOpened()
	r.PositionOpened()
	r.PositionClosed(domain.CloseTakeProfit)
	r.OpenPositions(1)
	r.PricesFetched(6, 5)
	r.AnalysisFallback()

	n, err := testutil.GatherAndCount(r.Registry(), "nbaedge_scans_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per result label")

	mfs, err := r.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["nbaedge_opportunities_total"])
	assert.Equal(t, 2.0, values["nbaedge_positions_opened_total"])
	assert.Equal(t, 1.0, values["nbaedge_positions_closed_total"])
	assert.Equal(t, 1.0, values["nbaedge_open_positions"])
	assert.Equal(t, 3.0, values["nbaedge_events_last_scan"])
	assert.Equal(t, 6.0, values["nbaedge_prices_requested_total"])
	assert.Equal(t, 5.0, values["nbaedge_prices_received_total"])
	assert.Equal(t, 1.0, values["nbaedge_analysis_fallbacks_total"])
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.NewRecorder()
	r.PositionClosed(domain.CloseStopLoss)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `nbaedge_positions_closed_total{reason="STOP_LOSS"} 1`)
}
