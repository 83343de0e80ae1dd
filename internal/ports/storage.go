package ports

import (
	"context"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

// StateStore persiste posiciones, log de scans y estado del scheduler.
//
// Todas las operaciones de escritura son read-modify-write atómicas bajo un
// único lock compartido por los tres documentos. Un documento inexistente se
// lee como vacío (o estado por defecto), nunca como error.
type StateStore interface {
	LoadPositions(ctx context.Context) ([]domain.Position, error)

	// UpdatePositions carga las posiciones, aplica fn y persiste el resultado.
	// Si fn devuelve error no se escribe nada.
	UpdatePositions(ctx context.Context, fn func([]domain.Position) ([]domain.Position, error)) error

	LoadScanLog(ctx context.Context) ([]domain.ScanLogEntry, error)

	// AppendScanLog agrega una entrada manteniendo la ventana de domain.MaxScanLog.
	AppendScanLog(ctx context.Context, entry domain.ScanLogEntry) error

	LoadState(ctx context.Context) (domain.SchedulerState, error)
	UpdateState(ctx context.Context, fn func(*domain.SchedulerState) error) error

	// Close libera los recursos del store.
	Close() error
}
