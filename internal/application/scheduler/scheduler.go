// Package scheduler conduce el loop de fondo: scan diario, scans manuales y
// monitoreo de posiciones, siempre secuenciales en una sola goroutine.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/application/engine"
	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/alejandrodnm/nbaedge/internal/ports"
)

const (
	defaultTick            = 30 * time.Second
	defaultMonitorInterval = time.Hour
	defaultDailyHour       = 9
)

// Config contiene la configuración del scheduler.
type Config struct {
	Tick            time.Duration // granularidad del loop; menor que domain.DailyScanWindow
	MonitorInterval time.Duration
	DailyHour       int
	Location        *time.Location
}

// MonitorReporter recibe el resumen de cada ciclo de monitoreo. Opcional.
type MonitorReporter interface {
	PrintMonitorStatus(domain.MonitorResult)
}

// Scheduler decide en cada wake qué ciclos corren.
type Scheduler struct {
	cfg         Config
	scanner     engine.ScannerService
	positions   engine.PositionManager
	store       ports.StateStore
	reporter    MonitorReporter
	now         func() time.Time
	lastMonitor time.Time
}

// New crea un Scheduler. reporter puede ser nil.
func New(
	cfg Config,
	scanner engine.ScannerService,
	positions engine.PositionManager,
	store ports.StateStore,
	reporter MonitorReporter,
) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = defaultTick
	}
	if cfg.MonitorInterval <= 0 {
		cfg.MonitorInterval = defaultMonitorInterval
	}
	if cfg.DailyHour < 0 || cfg.DailyHour > 23 {
		cfg.DailyHour = defaultDailyHour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		cfg:       cfg,
		scanner:   scanner,
		positions: positions,
		store:     store,
		reporter:  reporter,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj. Sólo para tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run ejecuta el loop hasta que el contexto se cancele.
// El primer wake es inmediato.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("scheduler starting",
		"tick", s.cfg.Tick,
		"monitor_interval", s.cfg.MonitorInterval,
		"daily_hour", s.cfg.DailyHour,
		"zone", s.cfg.Location.String(),
	)

	s.Tick(ctx)

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick ejecuta un wake del scheduler: scan manual o diario si corresponde y
// luego monitoreo si venció el intervalo. Cada ciclo recupera sus propios
// panics, así que un scan roto no impide el monitoreo.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()
	state, err := s.store.LoadState(ctx)
	if err != nil {
		// Sin estado no se sabe si el scan de hoy ya corrió: no escanear.
		slog.Error("scheduler: load state, skipping scan", "err", err)
	} else {
		switch {
		case state.ManualTriggered:
			slog.Info("scheduler: manual scan requested")
			s.consumeManual(ctx)
			s.scanCycle(ctx)
		case domain.ShouldRunDailyScan(now, state.LastScanDate, s.cfg.Location, s.cfg.DailyHour):
			slog.Info("scheduler: daily scan", "date", domain.DateKey(now, s.cfg.Location))
			s.scanCycle(ctx)
		}
	}

	if domain.ShouldMonitor(now, s.lastMonitor, s.cfg.MonitorInterval) {
		s.monitorCycle(ctx)
		s.lastMonitor = now
	}
}

// RunOnce corre un scan con apertura de posiciones y un monitoreo, y vuelve.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if _, _, err := s.ScanAndOpen(ctx); err != nil {
		return err
	}
	if _, err := s.monitor(ctx); err != nil {
		return err
	}
	return nil
}

// ScanAndOpen corre un scan, abre posición para cada BUY y marca el estado.
// El log del scan ya está escrito cuando empiezan las aperturas.
func (s *Scheduler) ScanAndOpen(ctx context.Context) (domain.ScanReport, []domain.Position, error) {
	report, err := s.scanner.RunOnce(ctx)
	if err != nil {
		return domain.ScanReport{}, nil, fmt.Errorf("scheduler.ScanAndOpen: %w", err)
	}

	var opened []domain.Position
	for _, opp := range report.Buys() {
		pos, err := s.positions.Open(ctx, opp)
		if err != nil {
			slog.Warn("scheduler: open position failed", "team", opp.Team, "err", err)
			continue
		}
		if pos != nil {
			opened = append(opened, *pos)
		}
	}

	now := s.now()
	if err := s.store.UpdateState(ctx, func(st *domain.SchedulerState) error {
		st.MarkScanned(now, s.cfg.Location)
		return nil
	}); err != nil {
		return report, opened, fmt.Errorf("scheduler.ScanAndOpen: save state: %w", err)
	}
	return report, opened, nil
}

// TriggerManualScan marca el flag que consume el próximo wake.
func (s *Scheduler) TriggerManualScan(ctx context.Context) error {
	if err := s.store.UpdateState(ctx, func(st *domain.SchedulerState) error {
		st.ManualTriggered = true
		return nil
	}); err != nil {
		return fmt.Errorf("scheduler.TriggerManualScan: %w", err)
	}
	slog.Info("scheduler: manual scan flagged")
	return nil
}

func (s *Scheduler) scanCycle(ctx context.Context) {
	defer recoverCycle("scan")

	report, opened, err := s.ScanAndOpen(ctx)
	if err != nil {
		slog.Error("scheduler: scan cycle failed", "err", err)
		return
	}
	slog.Info("scheduler: scan cycle complete",
		"events", len(report.Events),
		"opportunities", len(report.Opportunities),
		"opened", len(opened),
	)
}

func (s *Scheduler) monitorCycle(ctx context.Context) {
	defer recoverCycle("monitor")

	if _, err := s.monitor(ctx); err != nil {
		slog.Error("scheduler: monitor cycle failed", "err", err)
	}
}

func (s *Scheduler) monitor(ctx context.Context) (domain.MonitorResult, error) {
	res, err := s.positions.Monitor(ctx)
	if err != nil {
		return res, fmt.Errorf("scheduler.monitor: %w", err)
	}
	if s.reporter != nil && res.Checked > 0 {
		s.reporter.PrintMonitorStatus(res)
	}
	return res, nil
}

// consumeManual limpia el flag antes de escanear: un scan fallido no se
// reintenta en cada wake.
func (s *Scheduler) consumeManual(ctx context.Context) {
	if err := s.store.UpdateState(ctx, func(st *domain.SchedulerState) error {
		st.ManualTriggered = false
		return nil
	}); err != nil {
		slog.Warn("scheduler: clear manual flag", "err", err)
	}
}

func recoverCycle(name string) {
	if r := recover(); r != nil {
		slog.Error("scheduler: cycle panicked", "cycle", name, "panic", r, "stack", string(debug.Stack()))
	}
}
