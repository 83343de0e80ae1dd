// Package metrics expone los contadores del escáner y del motor paper en Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implementa ports.Metrics sobre un registry propio.
type Recorder struct {
	registry *prometheus.Registry

	scans           *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	eventsScanned   prometheus.Gauge
	opportunities   prometheus.Counter
	positionsOpened prometheus.Counter
	positionsClosed *prometheus.CounterVec
	openPositions   prometheus.Gauge
	pricesRequested prometheus.Counter
	pricesReceived  prometheus.Counter
	fallbacks       prometheus.Counter
}

// NewRecorder registra todos los colectores en un registry nuevo.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nbaedge_scans_total",
				Help: "Scans run, by result",
			},
			[]string{"result"},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nbaedge_scan_duration_seconds",
				Help:    "Wall time of a completed scan",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s a ~4min
			},
		),
		eventsScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nbaedge_events_last_scan",
			Help: "Games found in the last scan",
		}),
		opportunities: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nbaedge_opportunities_total",
			Help: "BUY/AVOID opportunities emitted",
		}),
		positionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nbaedge_positions_opened_total",
			Help: "Paper positions opened",
		}),
		positionsClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nbaedge_positions_closed_total",
				Help: "Paper positions closed, by reason",
			},
			[]string{"reason"},
		),
		openPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nbaedge_open_positions",
			Help: "Paper positions currently open",
		}),
		pricesRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nbaedge_prices_requested_total",
			Help: "Midpoints requested from the CLOB",
		}),
		pricesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nbaedge_prices_received_total",
			Help: "Midpoints successfully received",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nbaedge_analysis_fallbacks_total",
			Help: "Analyses replaced by the default",
		}),
	}

	r.registry.MustRegister(
		r.scans,
		r.scanDuration,
		r.eventsScanned,
		r.opportunities,
		r.positionsOpened,
		r.positionsClosed,
		r.openPositions,
		r.pricesRequested,
		r.pricesReceived,
		r.fallbacks,
	)
	return r
}

// Registry devuelve el registry subyacente.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler sirve el registry en formato de exposición.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ScanCompleted(events, opportunities int, d time.Duration) {
	r.scans.WithLabelValues("ok").Inc()
	r.scanDuration.Observe(d.Seconds())
	r.eventsScanned.Set(float64(events))
	r.opportunities.Add(float64(opportunities))
}

func (r *Recorder) ScanFailed() {
	r.scans.WithLabelValues("error").Inc()
}

func (r *Recorder) PositionOpened() {
	r.positionsOpened.Inc()
}

func (r *Recorder) PositionClosed(reason domain.CloseReason) {
	r.positionsClosed.WithLabelValues(string(reason)).Inc()
}

func (r *Recorder) OpenPositions(n int) {
	r.openPositions.Set(float64(n))
}

func (r *Recorder) PricesFetched(requested, received int) {
	r.pricesRequested.Add(float64(requested))
	r.pricesReceived.Add(float64(received))
}

func (r *Recorder) AnalysisFallback() {
	r.fallbacks.Inc()
}
