package polymarket

import (
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

// mapEvents convierte los DTOs de Gamma a domain.Event.
func mapEvents(raw []gammaEvent) []domain.Event {
	events := make([]domain.Event, 0, len(raw))
	for _, r := range raw {
		events = append(events, mapEvent(r))
	}
	return events
}

// mapEvent convierte un gammaEvent DTO a domain.Event.
func mapEvent(r gammaEvent) domain.Event {
	ev := domain.Event{
		ID:        r.ID,
		Title:     r.Title,
		StartTime: parseTime(r.StartTime),
		Volume:    float64(r.Volume),
		EventDate: r.EventDate,
		Contracts: make([]domain.Contract, 0, len(r.Markets)),
	}
	for _, m := range r.Markets {
		ev.Contracts = append(ev.Contracts, domain.Contract{
			Question: m.Question,
			Volume:   float64(m.Volume),
			TokenIDs: []string(m.ClobTokenIDs),
			Labels:   []string(m.Outcomes),
		})
	}
	return ev
}

// parseTime intenta los formatos que usa Gamma. Devuelve zero time si ninguno aplica.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// Polymarket usa varios formatos; intentamos los más comunes
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02 15:04:05-07",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
