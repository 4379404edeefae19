package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeDiv_ZeroDenominator(t *testing.T) {
	assert.Nil(t, SafeDiv(100, 0))
	assert.Nil(t, SafeDiv(0, 0))
}

func TestSafeDiv_Normal(t *testing.T) {
	v := SafeDiv(10, 4)
	require.NotNil(t, v)
	assert.InDelta(t, 2.5, *v, 0.0001)
}

func TestAggregateRows_Sums(t *testing.T) {
	rows := []Row{
		{AdSpend: 100, Revenue: 250, Clicks: 40, Leads: 10, Checkouts: 5, Purchases: 2, Impressions: 1000},
		{AdSpend: 50, Revenue: 0, Clicks: 10, Leads: 0, Checkouts: 0, Purchases: 0, Impressions: 500},
	}
	a := AggregateRows(rows)

	assert.InDelta(t, 150.0, a.Spend, 0.001)
	assert.InDelta(t, 250.0, a.Revenue, 0.001)
	assert.Equal(t, int64(50), a.Clicks)
	assert.Equal(t, int64(10), a.Leads)
	assert.Equal(t, int64(5), a.Checkouts)
	assert.Equal(t, int64(2), a.Purchases)
	assert.Equal(t, int64(1500), a.Impressions)

	require.NotNil(t, a.CPC)
	assert.InDelta(t, 3.0, *a.CPC, 0.001)
	require.NotNil(t, a.CPA)
	assert.InDelta(t, 75.0, *a.CPA, 0.001)
	require.NotNil(t, a.ROAS)
	assert.InDelta(t, 250.0/150.0, *a.ROAS, 0.001)
}

func TestAggregateRows_EmptyInputAllRatiosNil(t *testing.T) {
	a := AggregateRows(nil)
	assert.Nil(t, a.CPC)
	assert.Nil(t, a.CPL)
	assert.Nil(t, a.CPA)
	assert.Nil(t, a.CPCB)
	assert.Nil(t, a.ROAS)
	assert.Zero(t, a.Spend)
}

func TestAggregateRows_ZeroDenominatorsStayNil(t *testing.T) {
	// Spend sin clicks ni purchases: ratios indefinidos, no 0 ni Inf
	a := AggregateRows([]Row{{AdSpend: 120}})
	assert.Nil(t, a.CPC)
	assert.Nil(t, a.CPA)
	assert.Nil(t, a.CPCB)
	assert.Nil(t, a.CPL)
}

func TestAggregateRows_RoasDefinedWithSpend(t *testing.T) {
	a := AggregateRows([]Row{{AdSpend: 100, Revenue: 0}})
	require.NotNil(t, a.ROAS)
	assert.Zero(t, *a.ROAS)
}

func TestGroupBy_PreservesInsertionOrder(t *testing.T) {
	rows := []Row{
		{Date: "2026-08-03"},
		{Date: "2026-08-01"},
		{Date: "2026-08-03"},
		{Date: "2026-08-02"},
	}
	g := GroupBy(rows, func(r Row) string { return r.Date })

	assert.Equal(t, []string{"2026-08-03", "2026-08-01", "2026-08-02"}, g.Keys())
	assert.Len(t, g.Get("2026-08-03"), 2)
	assert.Equal(t, 3, g.Len())
}

func TestGroupBy_Idempotence(t *testing.T) {
	// La suma de agregados por grupo debe igualar el agregado global
	// en todos los campos aditivos.
	rows := []Row{
		{Date: "2026-08-01", AdSpend: 10.5, Revenue: 30, Clicks: 5, Leads: 1, Checkouts: 1, Purchases: 1, Impressions: 100},
		{Date: "2026-08-01", AdSpend: 20, Revenue: 0, Clicks: 3, Impressions: 80},
		{Date: "2026-08-02", AdSpend: 5.25, Revenue: 12, Clicks: 2, Leads: 2, Checkouts: 1, Impressions: 40},
	}
	total := AggregateRows(rows)

	g := GroupBy(rows, func(r Row) string { return r.Date })
	var sum Aggregate
	for _, k := range g.Keys() {
		a := AggregateRows(g.Get(k))
		sum.Spend += a.Spend
		sum.Revenue += a.Revenue
		sum.Clicks += a.Clicks
		sum.Leads += a.Leads
		sum.Checkouts += a.Checkouts
		sum.Purchases += a.Purchases
		sum.Impressions += a.Impressions
	}

	assert.InDelta(t, total.Spend, sum.Spend, 1e-9)
	assert.InDelta(t, total.Revenue, sum.Revenue, 1e-9)
	assert.Equal(t, total.Clicks, sum.Clicks)
	assert.Equal(t, total.Leads, sum.Leads)
	assert.Equal(t, total.Checkouts, sum.Checkouts)
	assert.Equal(t, total.Purchases, sum.Purchases)
	assert.Equal(t, total.Impressions, sum.Impressions)
}

func TestAggregateRows_DoesNotMutateSource(t *testing.T) {
	rows := []Row{{AdSpend: 10, Clicks: 2}}
	_ = AggregateRows(rows)
	assert.InDelta(t, 10.0, rows[0].AdSpend, 0.001)
	assert.Equal(t, int64(2), rows[0].Clicks)
}
