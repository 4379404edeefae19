// Package report construye la salida de presentación: agrupa el row set
// mergeado, agrega cada grupo, lo clasifica contra los thresholds y ordena
// canónicamente. Es el mismo pipeline groupBy → aggregate → statusFor que
// consume la capa de presentación.
package report

import (
	"time"

	"github.com/alexvidalr/adscope/internal/domain"
)

// Build genera el Report completo para un row set. Input vacío produce un
// report vacío válido (estado "no data"), nunca un error.
func Build(rows []domain.Row, level domain.Level, th domain.Thresholds, now time.Time) domain.Report {
	r := domain.Report{
		GeneratedAt: now.UTC(),
		Level:       level,
		Thresholds:  th,
		TotalRows:   len(rows),
		Totals:      domain.AggregateRows(rows),
		Summaries:   buildSummaries(rows, level, th),
		Trend:       buildTrend(rows),
	}
	return r
}

// buildSummaries agrupa por la clave compuesta product | campaign | entidad,
// agrega y clasifica cada grupo, y ordena Scale → Optimize → Kill con
// empates por spend descendente.
func buildSummaries(rows []domain.Row, level domain.Level, th domain.Thresholds) []domain.Summary {
	g := domain.GroupBy(rows, func(r domain.Row) string { return r.CompositeKey(level) })

	summaries := make([]domain.Summary, 0, g.Len())
	for _, k := range g.Keys() {
		group := g.Get(k)
		agg := domain.AggregateRows(group)
		first := group[0]
		summaries = append(summaries, domain.Summary{
			Key:      k,
			Product:  first.Product,
			Campaign: first.Campaign,
			Entity:   first.EntityName(level),
			Rows:     len(group),
			Metrics:  agg,
			Decision: domain.StatusFor(agg, th),
		})
	}
	domain.RankSummaries(summaries)
	return summaries
}

// buildTrend agrega por fecha para las series temporales. Mantiene el orden
// de primera aparición de las fechas — el caller ordena si lo necesita.
func buildTrend(rows []domain.Row) []domain.TrendPoint {
	g := domain.GroupBy(rows, func(r domain.Row) string { return r.Date })

	trend := make([]domain.TrendPoint, 0, g.Len())
	for _, d := range g.Keys() {
		trend = append(trend, domain.TrendPoint{
			Date:    d,
			Metrics: domain.AggregateRows(g.Get(d)),
		})
	}
	return trend
}
