package httpapi

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/alexvidalr/adscope/internal/domain"
)

// csvHeader es el contrato de columnas del export plano.
var csvHeader = []string{
	"date", "channel", "campaign", "product", "ad",
	"impressions", "clicks", "leads", "checkouts", "purchases",
	"ad_spend", "revenue",
}

var csvDimHeader = []string{"platform", "placement", "device", "country", "age"}

// writeCSV serializa las rows con el header fijo del export. Las columnas
// de dimensiones sólo se añaden cuando el request pidió enrichment.
func writeCSV(w http.ResponseWriter, rows []domain.Row, withDims bool) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="adscope.csv"`)

	cw := csv.NewWriter(w)
	header := csvHeader
	if withDims {
		header = append(append([]string{}, csvHeader...), csvDimHeader...)
	}
	cw.Write(header)

	for _, r := range rows {
		rec := []string{
			r.Date,
			r.Channel,
			r.Campaign,
			r.Product,
			r.Ad,
			strconv.FormatInt(r.Impressions, 10),
			strconv.FormatInt(r.Clicks, 10),
			strconv.FormatInt(r.Leads, 10),
			strconv.FormatInt(r.Checkouts, 10),
			strconv.FormatInt(r.Purchases, 10),
			strconv.FormatFloat(r.AdSpend, 'f', 2, 64),
			strconv.FormatFloat(r.Revenue, 'f', 2, 64),
		}
		if withDims {
			rec = append(rec, r.Platform, r.Placement, r.Device, r.Country, r.Age)
		}
		cw.Write(rec)
	}
	cw.Flush()
}
