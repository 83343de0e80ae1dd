package domain

import "time"

// MonitorResult summarises one monitor cycle over the open positions.
type MonitorResult struct {
	Checked  int        // open positions whose price was requested
	Updated  int        // positions that received a price
	Missing  int        // no quote this cycle, left unchanged
	Closed   []Position // positions closed in this cycle
	Open     int        // still open after the cycle
	Duration time.Duration
}
