package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/alejandrodnm/nbaedge/internal/ports"
)

// defaultSeed se usa cuando el moneyline local no tiene precio.
const defaultSeed = 0.5

// Config contiene la configuración del scanner.
type Config struct {
	Threshold float64        // NEA mínimo en puntos para emitir señal
	Location  *time.Location // zona del mercado; define "hoy"
}

// Scanner es el orquestador de un scan completo:
// eventos → estructura → precios → análisis → scoring → log → consola.
type Scanner struct {
	cfg      Config
	events   ports.EventProvider
	prices   ports.PriceProvider
	analyst  ports.Analyst
	store    ports.StateStore
	notifier ports.Notifier
	metrics  ports.Metrics
	now      func() time.Time
}

// New crea un Scanner con todas las dependencias inyectadas.
// notifier y metrics pueden ser nil.
func New(
	cfg Config,
	events ports.EventProvider,
	prices ports.PriceProvider,
	analyst ports.Analyst,
	store ports.StateStore,
	notifier ports.Notifier,
	metrics ports.Metrics,
) *Scanner {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Scanner{
		cfg:      cfg,
		events:   events,
		prices:   prices,
		analyst:  analyst,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj. Sólo para tests.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// RunOnce ejecuta exactamente un scan. Un fallo al listar eventos aborta el
// scan; el resto de fallos degradan (precio ausente, análisis por defecto).
func (s *Scanner) RunOnce(ctx context.Context) (domain.ScanReport, error) {
	start := time.Now()
	now := s.now()
	today := domain.DateKey(now, s.cfg.Location)

	events, err := s.events.FetchEvents(ctx)
	if err != nil {
		s.metrics.ScanFailed()
		return domain.ScanReport{}, fmt.Errorf("scanner.RunOnce: fetch events: %w", err)
	}

	todays := domain.FilterByDate(events, today)
	structure := domain.BuildStructure(todays)
	slog.Info("scan: events loaded",
		"date", today,
		"listed", len(events),
		"today", len(todays),
		"with_markets", len(structure),
	)

	tokenIDs := domain.CollectTokenIDs(structure)
	prices := map[string]float64{}
	if len(tokenIDs) > 0 {
		prices = s.prices.FetchMidpoints(ctx, tokenIDs)
	}
	s.metrics.PricesFetched(len(tokenIDs), len(prices))

	report := domain.ScanReport{
		At:     now,
		Date:   today,
		Events: make([]domain.EventReport, 0, len(structure)),
		Prices: prices,
	}

	var opps []domain.Opportunity
	for _, em := range structure {
		away, home := em.Teams()
		seed := homeSeed(em, home, prices)

		analysis := s.analyst.Analyze(ctx, home, away, seed)
		if analysis.Fallback {
			s.metrics.AnalysisFallback()
		}

		report.Events = append(report.Events, domain.EventReport{
			Markets:  em,
			Home:     home,
			Away:     away,
			Analysis: analysis,
		})
		opps = append(opps, domain.ScoreMoneyline(em, home, analysis, prices, s.cfg.Threshold, now)...)
	}

	domain.SortByEdge(opps)
	report.Opportunities = opps

	entry := domain.ScanLogEntry{
		At:            now,
		Events:        len(structure),
		Opportunities: len(opps),
		Results:       opps,
	}
	if err := s.store.AppendScanLog(ctx, entry); err != nil {
		slog.Warn("scan: scan log not saved", "err", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyScan(ctx, report); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	elapsed := time.Since(start)
	s.metrics.ScanCompleted(len(structure), len(opps), elapsed)
	slog.Info("scan complete",
		"events", len(structure),
		"prices", len(prices),
		"opportunities", len(opps),
		"buys", len(report.Buys()),
		"duration", elapsed.Round(time.Millisecond),
	)
	return report, nil
}

// homeSeed devuelve el precio del moneyline local como probabilidad 0-1.
func homeSeed(em domain.EventMarkets, home string, prices map[string]float64) float64 {
	ml, ok := em.Market(domain.CategoryMoneyline)
	if !ok {
		return defaultSeed
	}
	for _, o := range ml.Outcomes() {
		if !strings.EqualFold(strings.TrimSpace(o.Label), strings.TrimSpace(home)) {
			continue
		}
		if p, ok := prices[o.TokenID]; ok {
			return p
		}
	}
	return defaultSeed
}
