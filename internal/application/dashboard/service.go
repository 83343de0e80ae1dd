// Package dashboard arma las vistas de sólo lectura que consume la API JSON.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/alejandrodnm/nbaedge/internal/ports"
)

// RecentClosed es cuántas posiciones cerradas devuelve el snapshot.
const RecentClosed = 20

// Settings es el eco de la configuración activa.
type Settings struct {
	NEAThreshold    float64 `json:"nea_threshold"`
	MinFairValue    float64 `json:"min_fair_value"`
	TakeProfitPrice float64 `json:"take_profit_price"`
	MonitorInterval int     `json:"monitor_interval"` // segundos
	Bankroll        float64 `json:"bankroll"`
	RiskPerTrade    float64 `json:"risk_per_trade"`
	StakePerTrade   float64 `json:"stake_per_trade"`
}

// Snapshot es la respuesta de /api/data.
type Snapshot struct {
	At              time.Time            `json:"ts"`
	LastScan        *time.Time           `json:"last_scan"`
	PositionsOpen   []domain.Position    `json:"positions_open"`
	PositionsClosed []domain.Position    `json:"positions_closed"`
	Stats           domain.Stats         `json:"stats"`
	LastScanOps     []domain.Opportunity `json:"last_scan_ops"`
	Config          Settings             `json:"config"`
}

// Trigger marca un scan manual para el próximo wake del scheduler.
type Trigger interface {
	TriggerManualScan(ctx context.Context) error
}

// Service implementa las consultas del dashboard sobre el StateStore.
type Service struct {
	store    ports.StateStore
	trigger  Trigger
	settings Settings
	now      func() time.Time
}

// New crea el servicio.
func New(store ports.StateStore, trigger Trigger, settings Settings) *Service {
	return &Service{store: store, trigger: trigger, settings: settings, now: time.Now}
}

// Snapshot compone posiciones, estadísticas y el último scan.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	positions, err := s.store.LoadPositions(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("dashboard.Snapshot: %w", err)
	}
	log, err := s.store.LoadScanLog(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("dashboard.Snapshot: %w", err)
	}
	state, err := s.store.LoadState(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("dashboard.Snapshot: %w", err)
	}

	open, closed := domain.SplitByStatus(positions)
	if n := len(closed); n > RecentClosed {
		closed = closed[n-RecentClosed:]
	}

	ops := []domain.Opportunity{}
	if n := len(log); n > 0 && log[n-1].Results != nil {
		ops = log[n-1].Results
	}

	return Snapshot{
		At:              s.now(),
		LastScan:        state.LastScan,
		PositionsOpen:   open,
		PositionsClosed: closed,
		Stats:           domain.ComputeStats(positions, s.settings.Bankroll),
		LastScanOps:     ops,
		Config:          s.settings,
	}, nil
}

// Positions devuelve todas las posiciones tal como están persistidas.
func (s *Service) Positions(ctx context.Context) ([]domain.Position, error) {
	positions, err := s.store.LoadPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard.Positions: %w", err)
	}
	return positions, nil
}

// ScanLog devuelve la ventana completa del log de scans.
func (s *Service) ScanLog(ctx context.Context) ([]domain.ScanLogEntry, error) {
	log, err := s.store.LoadScanLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard.ScanLog: %w", err)
	}
	return log, nil
}

// TriggerScan delega en el scheduler.
func (s *Service) TriggerScan(ctx context.Context) error {
	if err := s.trigger.TriggerManualScan(ctx); err != nil {
		return fmt.Errorf("dashboard.TriggerScan: %w", err)
	}
	return nil
}
