package domain

import (
	"sort"
	"time"
)

// Summary es un grupo agregado y clasificado, listo para presentación.
type Summary struct {
	Key      string    `json:"key"`
	Product  string    `json:"product,omitempty"`
	Campaign string    `json:"campaign,omitempty"`
	Entity   string    `json:"entity,omitempty"`
	Rows     int       `json:"rows"`
	Metrics  Aggregate `json:"metrics"`
	Decision Decision  `json:"decision"`
}

// TrendPoint es el agregado de un día para las series temporales.
type TrendPoint struct {
	Date    string    `json:"date"`
	Metrics Aggregate `json:"metrics"`
}

// Report es la salida completa de una evaluación: totales, filas de tabla
// clasificadas y serie por día. Un Report de input vacío es válido y
// renderizable ("no data"), no un error.
type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Level       Level        `json:"level"`
	Thresholds  Thresholds   `json:"thresholds"`
	TotalRows   int          `json:"total_rows"`
	Totals      Aggregate    `json:"totals"`
	Summaries   []Summary    `json:"summaries"`
	Trend       []TrendPoint `json:"trend"`
}

// RankSummaries ordena in-place en el orden canónico de presentación:
// Scale, luego Optimize, luego Kill (Learn al final), empates por spend
// descendente.
func RankSummaries(s []Summary) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Decision != s[j].Decision {
			return s[i].Decision < s[j].Decision
		}
		return s[i].Metrics.Spend > s[j].Metrics.Spend
	})
}

// Snapshot condensa el Report en el resumen persistible de un run.
func (r Report) Snapshot(id string) Snapshot {
	s := Snapshot{
		ID:      id,
		TakenAt: r.GeneratedAt,
		Level:   r.Level,
		Rows:    r.TotalRows,
		Spend:   r.Totals.Spend,
		Revenue: r.Totals.Revenue,
	}
	for _, sum := range r.Summaries {
		switch sum.Decision {
		case DecisionScale:
			s.Scale++
		case DecisionOptimize:
			s.Optimize++
		case DecisionKill:
			s.Kill++
		}
		if sum.Metrics.ROAS != nil && *sum.Metrics.ROAS > s.BestRoas {
			s.BestRoas = *sum.Metrics.ROAS
		}
	}
	return s
}

// Snapshot es el resumen persistido de una evaluación programada.
type Snapshot struct {
	ID       string    `json:"id"`
	TakenAt  time.Time `json:"taken_at"`
	Level    Level     `json:"level"`
	Rows     int       `json:"rows"`
	Spend    float64   `json:"spend"`
	Revenue  float64   `json:"revenue"`
	Scale    int       `json:"scale"`
	Optimize int       `json:"optimize"`
	Kill     int       `json:"kill"`
	BestRoas float64   `json:"best_roas"`
}
