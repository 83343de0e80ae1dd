package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

// NoSummary se usa cuando el modelo omite "resumen".
const NoSummary = "Sin información disponible."

var (
	fenceRe = regexp.MustCompile("```(?:json|JSON)?")

	errNoJSON = errors.New("no JSON object in response")
)

// rawAnalysis acepta números o strings numéricos. Los punteros distinguen
// un campo ausente de un cero.
type rawAnalysis struct {
	PVegas   *json.Number `json:"p_vegas"`
	NewsHome *json.Number `json:"n_local"`
	NewsAway *json.Number `json:"n_visitante"`
	FormHome *json.Number `json:"r_local"`
	FormAway *json.Number `json:"r_visitante"`
	Summary  *string      `json:"resumen"`
}

// ParseAnalysis extrae y valida el objeto JSON de la respuesta del modelo.
// Quita code fences, toma desde la primera "{" hasta la última "}" y exige
// todos los campos numéricos dentro de rango.
func ParseAnalysis(text string) (domain.Analysis, error) {
	text = strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return domain.Analysis{}, fmt.Errorf("gemini.ParseAnalysis: %w", errNoJSON)
	}

	// El decoder se queda con el primer objeto aunque haya texto después.
	var raw rawAnalysis
	if err := json.NewDecoder(strings.NewReader(text[start : end+1])).Decode(&raw); err != nil {
		return domain.Analysis{}, fmt.Errorf("gemini.ParseAnalysis: decode: %w", err)
	}

	var a domain.Analysis
	fields := []struct {
		name string
		src  *json.Number
		dst  *float64
	}{
		{"p_vegas", raw.PVegas, &a.PVegas},
		{"n_local", raw.NewsHome, &a.NewsHome},
		{"n_visitante", raw.NewsAway, &a.NewsAway},
		{"r_local", raw.FormHome, &a.FormHome},
		{"r_visitante", raw.FormAway, &a.FormAway},
	}
	for _, f := range fields {
		if f.src == nil {
			return domain.Analysis{}, fmt.Errorf("gemini.ParseAnalysis: missing %s", f.name)
		}
		v, err := f.src.Float64()
		if err != nil {
			return domain.Analysis{}, fmt.Errorf("gemini.ParseAnalysis: %s: %w", f.name, err)
		}
		*f.dst = v
	}

	a.Summary = NoSummary
	if raw.Summary != nil && strings.TrimSpace(*raw.Summary) != "" {
		a.Summary = strings.TrimSpace(*raw.Summary)
	}

	if err := a.Validate(); err != nil {
		return domain.Analysis{}, fmt.Errorf("gemini.ParseAnalysis: %w", err)
	}
	return a, nil
}
