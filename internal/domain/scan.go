package domain

import "time"

// MaxScanLog es la ventana de entradas retenidas en el log de scans.
const MaxScanLog = 50

// ScanLogEntry es el registro inmutable de un scan completado.
type ScanLogEntry struct {
	At            time.Time     `json:"ts"`
	Events        int           `json:"events"`
	Opportunities int           `json:"opportunities"`
	Results       []Opportunity `json:"results"`
}

// AppendScanLog agrega entry y recorta a las últimas MaxScanLog entradas.
func AppendScanLog(log []ScanLogEntry, entry ScanLogEntry) []ScanLogEntry {
	log = append(log, entry)
	if n := len(log); n > MaxScanLog {
		log = append([]ScanLogEntry(nil), log[n-MaxScanLog:]...)
	}
	return log
}

// SchedulerState es el estado persistido del scheduler.
type SchedulerState struct {
	LastScan        *time.Time `json:"last_scan"`
	LastScanDate    string     `json:"last_scan_date,omitempty"` // "2006-01-02" en la zona del mercado
	ManualTriggered bool       `json:"manual_triggered"`
}

// MarkScanned registra un scan completado. No toca ManualTriggered: un
// trigger recibido durante el scan queda para el próximo wake.
func (s *SchedulerState) MarkScanned(now time.Time, loc *time.Location) {
	at := now
	s.LastScan = &at
	s.LastScanDate = DateKey(now, loc)
}

// EventReport es la vista de un evento para el reporte de consola.
type EventReport struct {
	Markets  EventMarkets
	Home     string
	Away     string
	Analysis Analysis
}

// ScanReport es el resultado completo de un scan.
type ScanReport struct {
	At            time.Time
	Date          string
	Events        []EventReport
	Prices        map[string]float64
	Opportunities []Opportunity
}

// Buys devuelve las oportunidades BUY en su orden actual.
func (r ScanReport) Buys() []Opportunity {
	var out []Opportunity
	for _, o := range r.Opportunities {
		if o.IsBuy() {
			out = append(out, o)
		}
	}
	return out
}
