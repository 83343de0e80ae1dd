package domain

import (
	"errors"
	"fmt"
)

// FallbackSummary es el resumen usado cuando el análisis externo no está disponible.
const FallbackSummary = "Análisis no disponible. Se usan valores neutros derivados del precio de mercado."

// Analysis es la estimación externa de noticias y forma para un partido.
// PVegas es la probabilidad implícita del local (0-100).
type Analysis struct {
	PVegas   float64 `json:"p_vegas"`
	NewsHome float64 `json:"n_local"`
	NewsAway float64 `json:"n_visitante"`
	FormHome float64 `json:"r_local"`
	FormAway float64 `json:"r_visitante"`
	Summary  string  `json:"resumen"`
	Fallback bool    `json:"fallback,omitempty"`
}

// DefaultAnalysis construye el análisis neutro a partir de la probabilidad
// implícita del local (0-1).
func DefaultAnalysis(seed float64) Analysis {
	if seed < 0 || seed > 1 {
		seed = 0.5
	}
	return Analysis{
		PVegas:   seed * 100,
		NewsHome: 0,
		NewsAway: 0,
		FormHome: 50,
		FormAway: 50,
		Summary:  FallbackSummary,
		Fallback: true,
	}
}

var errOutOfRange = errors.New("out of range")

// Validate comprueba que todos los factores estén dentro de rango.
func (a Analysis) Validate() error {
	checks := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"p_vegas", a.PVegas, 0, 100},
		{"n_local", a.NewsHome, -100, 100},
		{"n_visitante", a.NewsAway, -100, 100},
		{"r_local", a.FormHome, 0, 100},
		{"r_visitante", a.FormAway, 0, 100},
	}
	for _, c := range checks {
		if c.v < c.min || c.v > c.max {
			return fmt.Errorf("domain.Analysis: %s=%v: %w", c.name, c.v, errOutOfRange)
		}
	}
	return nil
}

// Side devuelve los factores del lado pedido:
// probabilidad implícita, noticias y forma reciente.
// El visitante usa 100 - PVegas.
func (a Analysis) Side(isHome bool) (pVegas, news, form float64) {
	if isHome {
		return a.PVegas, a.NewsHome, a.FormHome
	}
	return 100 - a.PVegas, a.NewsAway, a.FormAway
}
