package meta

import (
	"context"

	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

// dimension liga cada dimensión del modelo con su breakdown de la Graph API
// y con el setter sobre la Row.
type dimension struct {
	breakdown string
	label     func(rec insightRecord) string
	assign    func(row *domain.Row, label string)
}

var dimensions = []dimension{
	{
		breakdown: "publisher_platform",
		label:     func(r insightRecord) string { return r.PublisherPlatform },
		assign:    func(row *domain.Row, l string) { row.Platform = l },
	},
	{
		breakdown: "platform_position",
		label:     func(r insightRecord) string { return r.PlatformPosition },
		assign:    func(row *domain.Row, l string) { row.Placement = l },
	},
	{
		breakdown: "impression_device",
		label:     func(r insightRecord) string { return r.ImpressionDevice },
		assign:    func(row *domain.Row, l string) { row.Device = l },
	},
	{
		breakdown: "country",
		label:     func(r insightRecord) string { return r.Country },
		assign:    func(row *domain.Row, l string) { row.Country = l },
	},
	{
		breakdown: "age",
		label:     func(r insightRecord) string { return r.Age },
		assign:    func(row *domain.Row, l string) { row.Age = l },
	},
}

// bestLabel acumula el candidato dominante de una dimensión para una entidad.
type bestLabel struct {
	label     string
	purchases int64
	leads     int64
}

func (b bestLabel) beats(other bestLabel) bool {
	if b.purchases != other.purchases {
		return b.purchases > other.purchases
	}
	return b.leads > other.leads
}

// enrichDimensions puebla las dimensiones de audiencia de las rows ya
// descargadas. Una query extra por dimensión; para cada entidad gana el
// segmento con más purchases (desempate por leads). Best-effort en cuanto
// a cobertura: entidades sin datos de breakdown se quedan sin etiqueta.
func (p *Provider) enrichDimensions(ctx context.Context, q ports.FetchQuery, rows []domain.Row) error {
	for _, dim := range dimensions {
		records, err := p.fetchInsights(ctx, q, dim.breakdown)
		if err != nil {
			return err
		}

		best := make(map[string]bestLabel, len(rows))
		for _, rec := range records {
			label := dim.label(rec)
			if label == "" {
				continue
			}
			row := p.toRow(rec, q.Level)
			cand := bestLabel{
				label:     label,
				purchases: row.Purchases,
				leads:     row.Leads,
			}
			key := row.IdentityKey(q.Level)
			if cur, ok := best[key]; !ok || cand.beats(cur) {
				best[key] = cand
			}
		}

		for i := range rows {
			if b, ok := best[rows[i].IdentityKey(q.Level)]; ok {
				dim.assign(&rows[i], b.label)
			}
		}
	}
	return nil
}
