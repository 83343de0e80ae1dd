package engine

import (
	"context"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

// ScannerService es la interfaz mínima que el scheduler necesita del scanner.
// Desacopla el scheduler de *scanner.Scanner concreto.
type ScannerService interface {
	RunOnce(ctx context.Context) (domain.ScanReport, error)
}

// PositionManager abre y monitorea posiciones simuladas.
type PositionManager interface {
	Open(ctx context.Context, opp domain.Opportunity) (*domain.Position, error)
	Monitor(ctx context.Context) (domain.MonitorResult, error)
}

// TruncateStr trunca un string a maxLen caracteres añadiendo "..." si es necesario.
func TruncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
