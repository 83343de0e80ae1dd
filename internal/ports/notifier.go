package ports

import (
	"context"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

// Notifier presenta el resultado de un scan al usuario.
type Notifier interface {
	// NotifyScan muestra los partidos del día y las oportunidades ordenadas por |NEA|.
	// En la implementación de consola, imprime una tabla formateada.
	NotifyScan(ctx context.Context, report domain.ScanReport) error
}
