package polymarket

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaEventsResponse es la respuesta de GET /events.
type gammaEventsResponse []gammaEvent

// gammaEvent es un partido con sus mercados anidados.
type gammaEvent struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	StartTime string        `json:"startTime"`
	EventDate string        `json:"eventDate"`
	Volume    flexFloat     `json:"volume"`
	Markets   []gammaMarket `json:"markets"`
}

// gammaMarket es un contrato del evento.
// clobTokenIds y outcomes llegan como arrays codificados en string JSON.
type gammaMarket struct {
	Question     string      `json:"question"`
	Volume       flexFloat   `json:"volume"`
	ClobTokenIDs flexStrings `json:"clobTokenIds"`
	Outcomes     flexStrings `json:"outcomes"`
}

// --- CLOB API ---

// midpointResponse es la respuesta de GET /midpoint. mid puede ser string o número.
type midpointResponse struct {
	Mid json.RawMessage `json:"mid"`
}

// value devuelve el midpoint si está presente y es numérico.
func (r midpointResponse) value() (float64, bool) {
	raw := bytes.TrimSpace(r.Mid)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// flexFloat acepta número, string numérico o null. Un valor ilegible queda en 0
// en vez de abortar el decode de todo el listado.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = flexFloat(v)
			return nil
		}
	}
	*f = 0
	return nil
}

// flexStrings acepta un array JSON de strings o un string que contiene ese array.
// JSON mal formado degrada a lista vacía.
type flexStrings []string

func (s *flexStrings) UnmarshalJSON(data []byte) error {
	*s = nil
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*s = arr
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &arr); err != nil {
		return nil
	}
	*s = arr
	return nil
}
