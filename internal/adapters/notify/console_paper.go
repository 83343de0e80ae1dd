package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// PrintMonitorStatus prints a one-line summary of a monitor cycle.
func (c *Console) PrintMonitorStatus(in domain.MonitorResult) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s][PAPER] %d open | %d checked | %d updated | %d no price | %d closed (%s)",
		now, in.Open, in.Checked, in.Updated, in.Missing, len(in.Closed), in.Duration.Round(time.Millisecond))

	for i, p := range in.Closed {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&sb, "\n  >> %s %s %.2f → %.2f %+.2f%% ($%+.4f)",
			p.CloseReason, p.Team, p.EntryPrice, p.CurrentPrice, p.PnLPct, p.PnLUSD)
	}

	fmt.Fprintln(c.out, sb.String())
}

// PrintPositionsReport prints open and closed positions plus aggregate stats.
func (c *Console) PrintPositionsReport(positions []domain.Position, stats domain.Stats) {
	fmt.Fprintf(c.out, "\n")
	fmt.Fprintf(c.out, "========================================================\n")
	fmt.Fprintf(c.out, "  PAPER POSITIONS REPORT\n")
	fmt.Fprintf(c.out, "  open: %d | closed: %d | TP: %d | SL: %d | win rate: %.1f%%\n",
		stats.TotalOpen, stats.TotalClosed, stats.TakeProfits, stats.StopLosses, stats.WinRate)
	fmt.Fprintf(c.out, "  realized PnL: $%+.4f | capital: $%.4f\n", stats.PnLTotalUSD, stats.CapitalActual)
	fmt.Fprintf(c.out, "========================================================\n\n")

	if len(positions) == 0 {
		fmt.Fprintln(c.out, "  No paper positions yet. Run a scan first.")
		return
	}

	open, closed := domain.SplitByStatus(positions)

	if len(open) > 0 {
		fmt.Fprintln(c.out, "  OPEN")
		tbl := tablewriter.NewWriter(c.out)
		tbl.Header("Team", "Game", "Entry", "Now", "TP", "SL", "PnL%", "PnL$", "Opened")
		for _, p := range open {
			tbl.Append(
				p.Team,
				truncate(p.EventTitle, 28),
				fmt.Sprintf("%.4f", p.EntryPrice),
				fmt.Sprintf("%.4f", p.CurrentPrice),
				fmt.Sprintf("%.2f", p.TakeProfit),
				fmt.Sprintf("%.4f", p.StopLoss),
				fmt.Sprintf("%+.2f", p.PnLPct),
				fmt.Sprintf("%+.4f", p.PnLUSD),
				p.OpenedAt.Format("01-02 15:04"),
			)
		}
		tbl.Render()
	}

	if len(closed) > 0 {
		fmt.Fprintln(c.out, "\n  CLOSED")
		tbl := tablewriter.NewWriter(c.out)
		tbl.Header("Team", "Game", "Entry", "Exit", "Reason", "PnL%", "PnL$", "Closed")
		for _, p := range closed {
			closedAt := "-"
			if p.ClosedAt != nil {
				closedAt = p.ClosedAt.Format("01-02 15:04")
			}
			tbl.Append(
				p.Team,
				truncate(p.EventTitle, 28),
				fmt.Sprintf("%.4f", p.EntryPrice),
				fmt.Sprintf("%.4f", p.CurrentPrice),
				string(p.CloseReason),
				fmt.Sprintf("%+.2f", p.PnLPct),
				fmt.Sprintf("%+.4f", p.PnLUSD),
				closedAt,
			)
		}
		tbl.Render()
	}
	fmt.Fprintln(c.out)
}
