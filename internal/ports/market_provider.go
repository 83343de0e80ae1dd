package ports

import (
	"context"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

// EventProvider obtiene los eventos NBA activos desde Gamma.
type EventProvider interface {
	// FetchEvents devuelve los eventos activos de la serie NBA con sus contratos.
	// Un error aquí aborta el scan completo.
	FetchEvents(ctx context.Context) ([]domain.Event, error)
}
