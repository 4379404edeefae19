package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alexvidalr/adscope/internal/domain"
)

// Console implementa ports.Notifier escribiendo el report a un io.Writer.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el report en el modo configurado.
func (c *Console) Notify(_ context.Context, r domain.Report) error {
	if len(r.Summaries) == 0 {
		fmt.Fprintf(c.out, "[%s] no data for level %s\n",
			time.Now().Format("15:04:05"), r.Level)
		return nil
	}

	if c.table {
		c.printFull(r)
	} else {
		c.printCompact(r)
	}
	return nil
}

// printCompact imprime lo esencial en una línea: conteos y los mejores.
func (c *Console) printCompact(r domain.Report) {
	now := time.Now().Format("15:04:05")
	scale, optimize, kill := countByDecision(r.Summaries)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d rows → %d entities | Sc:%d Op:%d Ki:%d | spend $%.0f roas %s",
		now, r.TotalRows, len(r.Summaries), scale, optimize, kill,
		r.Totals.Spend, ratioLabel(r.Totals.ROAS))

	shown := 0
	for _, s := range r.Summaries {
		if shown >= 3 || s.Decision != domain.DecisionScale {
			break
		}
		fmt.Fprintf(&sb, " | %s %s $%.0f roas %s",
			s.Decision.Icon(), truncate(s.Entity, 25),
			s.Metrics.Spend, ratioLabel(s.Metrics.ROAS))
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla completa de entidades clasificadas.
func (c *Console) printFull(r domain.Report) {
	now := time.Now().Format("15:04:05")
	scale, optimize, kill := countByDecision(r.Summaries)

	fmt.Fprintf(c.out, "\n[%s] %s report — %d entities | Sc:%d Op:%d Ki:%d\n",
		now, r.Level, len(r.Summaries), scale, optimize, kill)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "", "Product", "Campaign", "Entity", "Spend", "Revenue", "ROAS", "CPA", "CPC", "Purch", "Clicks", "Decision")

	for i, s := range r.Summaries {
		table.Append(
			fmt.Sprintf("%d", i+1),
			s.Decision.Icon(),
			truncate(s.Product, 18),
			truncate(s.Campaign, 28),
			truncate(s.Entity, 28),
			fmt.Sprintf("$%.2f", s.Metrics.Spend),
			fmt.Sprintf("$%.2f", s.Metrics.Revenue),
			ratioLabel(s.Metrics.ROAS),
			moneyLabel(s.Metrics.CPA),
			moneyLabel(s.Metrics.CPC),
			fmt.Sprintf("%d", s.Metrics.Purchases),
			fmt.Sprintf("%d", s.Metrics.Clicks),
			s.Decision.String(),
		)
	}
	table.Render()

	fmt.Fprintf(c.out, "  Totals: spend $%.2f | revenue $%.2f | roas %s | %d purchases\n",
		r.Totals.Spend, r.Totals.Revenue, ratioLabel(r.Totals.ROAS), r.Totals.Purchases)
	fmt.Fprintln(c.out, "  ROAS/CPA con '-' = denominador cero (sin spend o sin purchases)")
}

// --- helpers ---

func countByDecision(summaries []domain.Summary) (scale, optimize, kill int) {
	for _, s := range summaries {
		switch s.Decision {
		case domain.DecisionScale:
			scale++
		case domain.DecisionOptimize:
			optimize++
		case domain.DecisionKill:
			kill++
		}
	}
	return
}

// ratioLabel formatea un ratio opcional; nil (denominador cero) queda "-".
func ratioLabel(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func moneyLabel(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
