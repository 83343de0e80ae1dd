package domain

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Pesos del valor real (NEA).
const (
	weightVegas = 0.45
	weightNews  = 0.40
	weightVenue = 0.10
	weightForm  = 0.05

	// VenueHome / VenueAway es el factor de localía.
	VenueHome = 5.0
	VenueAway = -5.0
)

// NormalizeNews mapea un factor de noticias de [-100, 100] a [0, 100].
func NormalizeNews(n float64) float64 {
	return (n + 100) / 2
}

// DenormalizeNews es la inversa de NormalizeNews.
func DenormalizeNews(norm float64) float64 {
	return 2*norm - 100
}

// FairValue calcula el valor real en escala 0-100.
//
//	FV = 0.45·P_vegas + 0.40·N_norm + 0.10·V + 0.05·R
func FairValue(pVegas, newsNorm, venue, form float64) float64 {
	return weightVegas*pVegas + weightNews*newsNorm + weightVenue*venue + weightForm*form
}

// Edge es la NEA: precio de mercado menos valor real.
// Negativa = el mercado infravalora el resultado.
func Edge(pPoly, fairValue float64) float64 {
	return pPoly - fairValue
}

// Signal es la acción sugerida para una oportunidad.
type Signal string

const (
	SignalNone  Signal = ""
	SignalBuy   Signal = "BUY"
	SignalAvoid Signal = "AVOID"
)

// ClassifyEdge aplica el umbral. Ambos límites son inclusivos.
func ClassifyEdge(edge, threshold float64) Signal {
	switch {
	case edge <= -threshold:
		return SignalBuy
	case edge >= threshold:
		return SignalAvoid
	default:
		return SignalNone
	}
}

// ScoreMoneyline puntúa los dos lados del moneyline de un evento.
// home es el nombre del equipo local; prices son midpoints 0-1 por token.
// Sólo se emiten resultados con |NEA| >= threshold y precio disponible.
func ScoreMoneyline(em EventMarkets, home string, a Analysis, prices map[string]float64, threshold float64, now time.Time) []Opportunity {
	ml, ok := em.Market(CategoryMoneyline)
	if !ok {
		return nil
	}

	var opps []Opportunity
	for _, o := range ml.Outcomes() {
		price, ok := prices[o.TokenID]
		if !ok {
			continue
		}
		isHome := sameTeam(o.Label, home)
		pVegas, news, form := a.Side(isHome)
		venue := VenueAway
		if isHome {
			venue = VenueHome
		}

		pPoly := price * 100
		fv := FairValue(pVegas, NormalizeNews(news), venue, form)
		edge := Edge(pPoly, fv)
		sig := ClassifyEdge(edge, threshold)
		if sig == SignalNone {
			continue
		}

		opps = append(opps, Opportunity{
			EventTitle:  em.Event.Title,
			Team:        o.Label,
			IsHome:      isHome,
			MarketPrice: Round(pPoly, 2),
			FairValue:   Round(fv, 2),
			Edge:        Round(edge, 2),
			Signal:      sig,
			StartTime:   em.Event.StartTime,
			TokenID:     o.TokenID,
			Summary:     a.Summary,
			ScannedAt:   now,
		})
	}
	return opps
}

// SortByEdge ordena por |NEA| descendente. Estable.
func SortByEdge(opps []Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return math.Abs(opps[i].Edge) > math.Abs(opps[j].Edge)
	})
}

func sameTeam(label, team string) bool {
	return strings.EqualFold(strings.TrimSpace(label), strings.TrimSpace(team))
}
