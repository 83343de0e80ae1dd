package notify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out       io.Writer
	table     bool
	threshold float64
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool, threshold float64) *Console {
	return &Console{out: os.Stdout, table: table, threshold: threshold}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table, threshold: 10}
}

// NotifyScan imprime el scan en el modo configurado.
func (c *Console) NotifyScan(_ context.Context, r domain.ScanReport) error {
	if len(r.Events) == 0 {
		fmt.Fprintf(c.out, "[%s] no games found for %s\n", clock(r.At), r.Date)
		return nil
	}

	if c.table {
		c.printFull(r)
	} else {
		c.printCompact(r)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(r domain.ScanReport) {
	buys, avoids := countSignals(r.Opportunities)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s %d games → %d prices | BUY:%d AVOID:%d",
		clock(r.At), r.Date, len(r.Events), len(r.Prices), buys, avoids)

	for i, opp := range r.Opportunities {
		if i >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s %s %.0f¢ fv%.1f nea%+.1f",
			opp.Signal, compactName(opp.Team, 20), opp.MarketPrice, opp.FairValue, opp.Edge)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime un bloque por partido y la tabla de oportunidades.
func (c *Console) printFull(r domain.ScanReport) {
	buys, avoids := countSignals(r.Opportunities)
	fmt.Fprintf(c.out, "\n[%s] %s | %d games | %d prices | BUY:%d AVOID:%d | NEA ±%.0f\n",
		clock(r.At), r.Date, len(r.Events), len(r.Prices), buys, avoids, c.threshold)

	for _, ev := range r.Events {
		c.printEvent(ev, r.Prices)
	}

	c.printOpportunities(r.Opportunities)
}

// printEvent imprime el moneyline con su desglose y las líneas de spread/total.
func (c *Console) printEvent(ev domain.EventReport, prices map[string]float64) {
	start := "-"
	if !ev.Markets.Event.StartTime.IsZero() {
		start = ev.Markets.Event.StartTime.Format("15:04 MST")
	}
	fmt.Fprintf(c.out, "\n=== %s  (%s) ===\n", ev.Markets.Event.Title, start)
	if ev.Analysis.Fallback {
		fmt.Fprintln(c.out, "  (análisis por defecto)")
	}
	if ev.Analysis.Summary != "" {
		fmt.Fprintf(c.out, "  %s\n", truncate(ev.Analysis.Summary, 160))
	}

	if ml, ok := ev.Markets.Market(domain.CategoryMoneyline); ok {
		table := tablewriter.NewWriter(c.out)
		table.Header("Team", "Side", "Poly", "Vegas", "N_norm", "V", "R", "FV", "NEA", "Signal")
		for _, o := range ml.Outcomes() {
			isHome := strings.EqualFold(o.Label, ev.Home)
			pVegas, news, form := ev.Analysis.Side(isHome)
			side, venue := "away", domain.VenueAway
			if isHome {
				side, venue = "home", domain.VenueHome
			}
			fv := domain.FairValue(pVegas, domain.NormalizeNews(news), venue, form)

			price, ok := prices[o.TokenID]
			if !ok {
				table.Append(o.Label, side, "n/a", f1(pVegas), f1(domain.NormalizeNews(news)),
					f1(venue), f1(form), f1(fv), "-", "-")
				continue
			}
			edge := domain.Edge(price*100, fv)
			sig := string(domain.ClassifyEdge(edge, c.threshold))
			if sig == "" {
				sig = "-"
			}
			table.Append(o.Label, side, cents(price), f1(pVegas), f1(domain.NormalizeNews(news)),
				f1(venue), f1(form), f1(fv), fmt.Sprintf("%+.1f", edge), sig)
		}
		table.Render()
	} else {
		fmt.Fprintln(c.out, "  no moneyline market")
	}

	spr, hasSpr := ev.Markets.Market(domain.CategorySpread)
	tot, hasTot := ev.Markets.Market(domain.CategoryTotal)
	if !hasSpr && !hasTot {
		return
	}
	fmt.Fprintf(c.out, "  %-32s %s\n", "SPREAD", "TOTAL")
	var sprOut, totOut []domain.Outcome
	if hasSpr {
		sprOut = spr.Outcomes()
	}
	if hasTot {
		totOut = tot.Outcomes()
	}
	for row := 0; row < max(len(sprOut), len(totOut)); row++ {
		var left, right string
		if row < len(sprOut) {
			if p, ok := prices[sprOut[row].TokenID]; ok {
				left = fmt.Sprintf("%s %s → %s", sprOut[row].Label, spreadLabel(spr.Question, sprOut[row].Label), cents(p))
			}
		}
		if row < len(totOut) {
			if p, ok := prices[totOut[row].TokenID]; ok {
				right = fmt.Sprintf("%s → %s", totalLabel(tot.Question, totOut[row].Label), cents(p))
			}
		}
		fmt.Fprintf(c.out, "  %-32s %s\n", left, right)
	}
}

// printOpportunities imprime la tabla final ordenada por |NEA|.
func (c *Console) printOpportunities(opps []domain.Opportunity) {
	if len(opps) == 0 {
		fmt.Fprintf(c.out, "\n  No opportunities above ±%.0f NEA\n\n", c.threshold)
		return
	}

	fmt.Fprintf(c.out, "\n=== OPPORTUNITIES (%d) ===\n", len(opps))
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Game", "Team", "Poly", "FV", "NEA", "Signal", "Tip-off")
	for i, opp := range opps {
		tip := "-"
		if !opp.StartTime.IsZero() {
			tip = opp.StartTime.Format("15:04")
		}
		table.Append(
			strconv.Itoa(i+1),
			truncate(opp.EventTitle, 30),
			opp.Team,
			fmt.Sprintf("%.0f¢", opp.MarketPrice),
			f1(opp.FairValue),
			fmt.Sprintf("%+.2f", opp.Edge),
			string(opp.Signal),
			tip,
		)
	}
	table.Render()
	fmt.Fprintln(c.out, "  NEA = Poly − FV | BUY: mercado infravalora | AVOID: mercado sobrevalora")
	fmt.Fprintln(c.out)
}

// spreadLabel devuelve los puntos del spread vistos desde outcome.
// "Spread: Lakers (-3.5)" → Lakers "-3.5", Celtics "+3.5".
func spreadLabel(question, outcome string) string {
	open := strings.Index(question, "(")
	closing := strings.LastIndex(question, ")")
	colon := strings.Index(question, ":")
	if open < 0 || closing < open || colon < 0 || colon > open {
		return ""
	}
	pts, err := strconv.ParseFloat(strings.TrimSpace(question[open+1:closing]), 64)
	if err != nil {
		return ""
	}
	fav := strings.TrimSpace(question[colon+1 : open])
	if !strings.EqualFold(outcome, fav) {
		pts = -pts
	}
	return fmt.Sprintf("%+.1f", pts)
}

// totalLabel devuelve "O 224.5" / "U 224.5" a partir de la pregunta.
func totalLabel(question, outcome string) string {
	idx := strings.Index(strings.ToUpper(question), "O/U")
	if idx < 0 {
		return outcome
	}
	line := strings.TrimSpace(question[idx+len("O/U"):])
	prefix := "U"
	if strings.EqualFold(outcome, "over") {
		prefix = "O"
	}
	if line == "" {
		return outcome
	}
	return prefix + " " + line
}

// --- helpers ---

func countSignals(opps []domain.Opportunity) (buys, avoids int) {
	for _, o := range opps {
		switch o.Signal {
		case domain.SignalBuy:
			buys++
		case domain.SignalAvoid:
			avoids++
		}
	}
	return
}

func clock(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("15:04:05")
}

func cents(p float64) string {
	return fmt.Sprintf("%.0f¢", math.Round(p*100))
}

func f1(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
