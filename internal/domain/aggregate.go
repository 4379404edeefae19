package domain

// Aggregate es la reducción de un conjunto de Rows que comparten group key.
// Los ratios derivados son punteros: nil significa "indefinido" (denominador
// cero) — nunca 0, NaN ni Inf.
type Aggregate struct {
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Clicks      int64   `json:"clicks"`
	Leads       int64   `json:"leads"`
	Checkouts   int64   `json:"checkouts"`
	Purchases   int64   `json:"purchases"`
	Impressions int64   `json:"impressions"`

	CPC  *float64 `json:"cpc"`  // spend / clicks
	CPL  *float64 `json:"cpl"`  // spend / leads
	CPA  *float64 `json:"cpa"`  // spend / purchases
	CPCB *float64 `json:"cpcb"` // spend / checkouts
	ROAS *float64 `json:"roas"` // revenue / spend
}

// SafeDiv es la regla compartida de división segura: nil cuando el denominador
// es exactamente 0. Se aplica uniforme a todos los ratios, sin excepciones.
func SafeDiv(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}

// AggregateRows suma los contadores de rows y calcula los ratios derivados.
// Es una reducción pura: el orden de suma no afecta el resultado a escala
// de métricas de dashboard.
func AggregateRows(rows []Row) Aggregate {
	var a Aggregate
	for _, r := range rows {
		a.Spend += r.AdSpend
		a.Revenue += r.Revenue
		a.Clicks += r.Clicks
		a.Leads += r.Leads
		a.Checkouts += r.Checkouts
		a.Purchases += r.Purchases
		a.Impressions += r.Impressions
	}
	a.CPC = SafeDiv(a.Spend, float64(a.Clicks))
	a.CPL = SafeDiv(a.Spend, float64(a.Leads))
	a.CPA = SafeDiv(a.Spend, float64(a.Purchases))
	a.CPCB = SafeDiv(a.Spend, float64(a.Checkouts))
	a.ROAS = SafeDiv(a.Revenue, a.Spend)
	return a
}

// Groups es el resultado de GroupBy: preserva el orden de inserción de las
// keys (primera aparición), no ordena.
type Groups struct {
	keys []string
	m    map[string][]Row
}

// GroupBy agrupa rows por la key function dada.
func GroupBy(rows []Row, keyFn func(Row) string) *Groups {
	g := &Groups{m: make(map[string][]Row)}
	for _, r := range rows {
		k := keyFn(r)
		if _, ok := g.m[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.m[k] = append(g.m[k], r)
	}
	return g
}

// Keys devuelve las group keys en orden de primera aparición.
func (g *Groups) Keys() []string { return g.keys }

// Get devuelve las rows del grupo k.
func (g *Groups) Get(k string) []Row { return g.m[k] }

// Len devuelve la cantidad de grupos.
func (g *Groups) Len() int { return len(g.keys) }
