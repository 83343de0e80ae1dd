package ports

import (
	"context"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

// PriceProvider obtiene midpoints del CLOB.
type PriceProvider interface {
	// FetchMidpoints devuelve token_id → precio en [0,1].
	// Los tokens que fallan simplemente no aparecen en el mapa: nunca devuelve cero por defecto.
	FetchMidpoints(ctx context.Context, tokenIDs []string) map[string]float64
}

// Analyst estima noticias y forma reciente de un partido.
type Analyst interface {
	// Analyze nunca falla: ante cualquier error devuelve domain.DefaultAnalysis(seed).
	// seed es la probabilidad implícita del local (0-1).
	Analyze(ctx context.Context, home, away string, seed float64) domain.Analysis
}
