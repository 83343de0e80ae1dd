package domain

import "time"

// DailyScanWindow es cuánto dura la ventana del scan diario desde la hora en punto.
const DailyScanWindow = 2 * time.Minute

// DateKey devuelve la fecha calendario de t en loc ("2006-01-02").
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(time.DateOnly)
}

// ShouldRunDailyScan es true si now cae en los primeros dos minutos de hour
// (en loc) y todavía no hubo scan ese día.
func ShouldRunDailyScan(now time.Time, lastScanDate string, loc *time.Location, hour int) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	if local.Hour() != hour {
		return false
	}
	if time.Duration(local.Minute())*time.Minute >= DailyScanWindow {
		return false
	}
	return lastScanDate != DateKey(now, loc)
}

// ShouldMonitor es true si nunca se monitoreó o ya pasó interval.
func ShouldMonitor(now, lastMonitor time.Time, interval time.Duration) bool {
	if lastMonitor.IsZero() {
		return true
	}
	return now.Sub(lastMonitor) >= interval
}
