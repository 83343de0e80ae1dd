package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Analyst implementa ports.Analyst sobre un Generator.
// Nunca devuelve error: cualquier fallo termina en domain.DefaultAnalysis.
type Analyst struct {
	gen     Generator
	timeout time.Duration
}

// NewAnalyst crea un Analyst. gen puede ser nil (sin API key): en ese caso
// todas las llamadas devuelven el análisis por defecto.
func NewAnalyst(gen Generator, timeout time.Duration) *Analyst {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Analyst{gen: gen, timeout: timeout}
}

// Analyze pide el análisis del partido. seed es la probabilidad implícita del local (0-1).
func (a *Analyst) Analyze(ctx context.Context, home, away string, seed float64) (result domain.Analysis) {
	if a.gen == nil {
		slog.Warn("gemini: no API key, using default analysis", "home", home, "away", away)
		return domain.DefaultAnalysis(seed)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("gemini: panic during analysis", "home", home, "panic", r)
			result = domain.DefaultAnalysis(seed)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.gen.Generate(ctx, buildPrompt(home, away))
	if err != nil {
		slog.Error("gemini: generate failed", "home", home, "away", away, "err", err)
		return domain.DefaultAnalysis(seed)
	}

	parsed, err := ParseAnalysis(text)
	if err != nil {
		slog.Warn("gemini: unusable response, using default analysis", "home", home, "err", err)
		return domain.DefaultAnalysis(seed)
	}

	slog.Debug("gemini: analysis ready",
		"home", home,
		"p_vegas", parsed.PVegas,
		"n_local", parsed.NewsHome,
		"n_visitante", parsed.NewsAway,
	)
	return parsed
}

func buildPrompt(home, away string) string {
	return fmt.Sprintf(`Eres un analista experto de apuestas deportivas NBA.
Analiza el partido de HOY: %[2]s (visitante) @ %[1]s (local).

Usando búsqueda web, responde EXACTAMENTE con este objeto JSON (sin markdown):

{
  "p_vegas": <0-100, probabilidad implícita de %[1]s según las casas de apuestas hoy>,
  "n_local": <-100 a 100, factor noticias de %[1]s>,
  "n_visitante": <-100 a 100, factor noticias de %[2]s>,
  "r_local": <0-100, racha de %[1]s en los últimos 5 partidos>,
  "r_visitante": <0-100, racha de %[2]s en los últimos 5 partidos>,
  "resumen": "<2 oraciones: estado actual, lesiones importantes y contexto>"
}

Busca: odds actuales de DraftKings/FanDuel, lesiones confirmadas y últimos 5 resultados de cada equipo.
Responde SOLO el JSON.`, home, away)
}
