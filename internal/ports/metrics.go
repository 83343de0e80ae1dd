package ports

import (
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

// Metrics recibe los eventos observables del motor.
type Metrics interface {
	ScanCompleted(events, opportunities int, d time.Duration)
	ScanFailed()
	PositionOpened()
	PositionClosed(reason domain.CloseReason)
	OpenPositions(n int)
	PricesFetched(requested, received int)
	AnalysisFallback()
}

// NopMetrics descarta todo. Útil en tests y en modo --once.
type NopMetrics struct{}

func (NopMetrics) ScanCompleted(int, int, time.Duration) {}
func (NopMetrics) ScanFailed() {}
func (NopMetrics) PositionOpened() {}
func (NopMetrics) PositionClosed(domain.CloseReason) {}
func (NopMetrics) OpenPositions(int) {}
func (NopMetrics) PricesFetched(int, int) {}
func (NopMetrics) AnalysisFallback() {}
