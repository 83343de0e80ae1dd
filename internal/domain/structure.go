package domain

import (
	"sort"
	"strings"
)

// maxCategories es el número de categorías seleccionables por evento.
const maxCategories = 3

// excludedPhrases descarta props de jugador, splits por periodo y mercados exóticos.
// Se comparan contra la pregunta en minúsculas.
var excludedPhrases = []string{
	"points o/u", "rebounds o/u", "assists o/u", "steals o/u",
	"blocks o/u", "turnovers o/u", "3-pointer", "field goal", "free throw",
	"first quarter", "second quarter", "third quarter", "fourth quarter",
	"first half", "second half", "halftime",
	"triple double", "double double", "triple-double", "double-double",
	"will there be", "lead at any", "margin of victory", "largest lead",
}

// ClassifyQuestion clasifica un contrato a partir del texto de su pregunta.
// Es una función pura: la misma pregunta siempre produce la misma categoría.
//
// Orden de reglas:
//  1. exclusiones (props, cuartos, mitades, ...)
//  2. "Spread:" al inicio → Spread
//  3. contiene ": O/U" → Total
//  4. contiene "vs." y ningún ":" → Moneyline
func ClassifyQuestion(question string) Category {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, ex := range excludedPhrases {
		if strings.Contains(q, ex) {
			return CategoryExcluded
		}
	}
	switch {
	case strings.HasPrefix(q, "spread:"):
		return CategorySpread
	case strings.Contains(q, ": o/u"):
		return CategoryTotal
	case strings.Contains(q, "vs.") && !strings.Contains(q, ":"):
		return CategoryMoneyline
	}
	return CategoryExcluded
}

// BuildStructure clasifica los contratos de cada evento y se queda con el de
// mayor volumen por categoría. Los contratos sin token IDs se descartan.
// Un evento sin contratos válidos aparece igualmente, con Markets vacío.
func BuildStructure(events []Event) []EventMarkets {
	out := make([]EventMarkets, 0, len(events))
	for _, ev := range events {
		candidates := make([]Contract, 0, len(ev.Contracts))
		for _, c := range ev.Contracts {
			cat := ClassifyQuestion(c.Question)
			if cat == CategoryExcluded || len(c.TokenIDs) == 0 {
				continue
			}
			c.Category = cat
			candidates = append(candidates, c)
		}

		// Estable: a igual volumen gana el primero listado por la API
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Volume > candidates[j].Volume
		})

		selected := make(map[Category]Contract, maxCategories)
		for _, c := range candidates {
			if _, taken := selected[c.Category]; !taken {
				selected[c.Category] = c
			}
			if len(selected) == maxCategories {
				break
			}
		}
		out = append(out, EventMarkets{Event: ev, Markets: selected})
	}
	return out
}

// FilterByDate devuelve los eventos cuya fecha propia coincide con date ("2006-01-02").
func FilterByDate(events []Event, date string) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.EventDate == date {
			out = append(out, ev)
		}
	}
	return out
}

// CollectTokenIDs devuelve los token IDs únicos de todos los contratos
// seleccionados, en orden de aparición.
func CollectTokenIDs(structure []EventMarkets) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, em := range structure {
		for _, cat := range []Category{CategoryMoneyline, CategorySpread, CategoryTotal} {
			c, ok := em.Markets[cat]
			if !ok {
				continue
			}
			for _, id := range c.TokenIDs {
				if id == "" || seen[id] {
					continue
				}
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// ParseTeams separa un título "Away vs. Home" en (away, home).
// Si el título no tiene ese formato devuelve el título en ambos lados.
func ParseTeams(title string) (away, home string) {
	parts := strings.Split(title, " vs. ")
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return title, title
}
