package domain

import "time"

// Category clasifica un contrato dentro de un evento NBA.
type Category int

const (
	CategoryExcluded Category = iota
	CategoryMoneyline
	CategorySpread
	CategoryTotal
)

// String devuelve el nombre legible de la categoría.
func (c Category) String() string {
	switch c {
	case CategoryMoneyline:
		return "Moneyline"
	case CategorySpread:
		return "Spread"
	case CategoryTotal:
		return "Total O/U"
	default:
		return "Excluded"
	}
}

// Event es un partido real tal como lo lista Gamma.
// Inmutable una vez obtenido dentro de un scan.
type Event struct {
	ID        string
	Title     string    // formato "Away vs. Home"
	StartTime time.Time // UTC
	Volume    float64
	EventDate string // "2006-01-02", fecha propia del mercado
	Contracts []Contract
}

// Contract es un mercado de Polymarket asociado a un evento.
// TokenIDs y Labels vienen de arrays separados de la API; se emparejan por índice.
type Contract struct {
	Category Category
	Question string
	Volume   float64
	TokenIDs []string
	Labels   []string
}

// Outcome es un lado del contrato con su token del CLOB.
type Outcome struct {
	Label   string
	TokenID string
}

// Outcomes empareja labels y token IDs. Si las longitudes difieren se
// descartan los sobrantes del array más largo.
func (c Contract) Outcomes() []Outcome {
	n := min(len(c.Labels), len(c.TokenIDs))
	out := make([]Outcome, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Outcome{Label: c.Labels[i], TokenID: c.TokenIDs[i]})
	}
	return out
}

// EventMarkets es la vista normalizada de un evento: como máximo un contrato por categoría.
type EventMarkets struct {
	Event   Event
	Markets map[Category]Contract
}

// Market devuelve el contrato seleccionado para la categoría, si existe.
func (em EventMarkets) Market(c Category) (Contract, bool) {
	m, ok := em.Markets[c]
	return m, ok
}

// Teams devuelve (away, home) a partir del título del evento.
func (em EventMarkets) Teams() (away, home string) {
	return ParseTeams(em.Event.Title)
}
