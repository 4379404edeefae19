package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alexvidalr/adscope/internal/application/merge"
	"github.com/alexvidalr/adscope/internal/application/report"
	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

// parseMergeQuery traduce los query params a una merge.Query normalizada.
func parseMergeQuery(r *http.Request) (merge.Query, error) {
	vals := r.URL.Query()
	q := merge.Query{
		Level:       domain.Level(vals.Get("level")),
		Channel:     strings.ToLower(vals.Get("channel")),
		Account:     vals.Get("account"),
		From:        vals.Get("from"),
		To:          vals.Get("to"),
		DatePreset:  vals.Get("date_preset"),
		IncludeDims: vals.Get("dims") == "true" || vals.Get("dims") == "1",
	}
	if err := q.Normalize(time.Now()); err != nil {
		return merge.Query{}, err
	}
	return q, nil
}

// handleMerge ejecuta el merge multi-canal y responde JSON o CSV según
// format. Fallas parciales de adapters no son error del endpoint.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	q, err := parseMergeQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows := s.merger.Merge(r.Context(), q)

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		writeCSV(w, rows, q.IncludeDims)
		return
	}
	writeJSON(w, rows)
}

// handleChannel hace fetch de un solo canal. A diferencia del merge, aquí
// una falla del adapter sí es error del endpoint (502).
func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "channel"))
	provider, ok := s.providers[name]
	if !ok {
		http.Error(w, "unknown channel "+name, http.StatusNotFound)
		return
	}

	q, err := parseMergeQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := s.fetchChannel(r, provider, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		writeCSV(w, rows, q.IncludeDims)
		return
	}
	writeJSON(w, rows)
}

// fetchChannel resuelve las cuentas del provider y concatena los fetches.
func (s *Server) fetchChannel(r *http.Request, provider ports.ChannelProvider, q merge.Query) ([]domain.Row, error) {
	accounts := []string{q.Account}
	if q.Account == "" || q.Account == merge.AccountAll {
		list, err := provider.Accounts(r.Context())
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			list = []string{""}
		}
		accounts = list
	}

	rows := make([]domain.Row, 0, 256)
	for _, acc := range accounts {
		part, err := provider.Fetch(r.Context(), ports.FetchQuery{
			Level:       q.Level,
			From:        q.From,
			To:          q.To,
			AccountID:   acc,
			IncludeDims: q.IncludeDims,
		})
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}
	return rows, nil
}

// handleReport ejecuta el pipeline completo merge → aggregate → classify.
// Los thresholds default se pueden pisar por query param.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q, err := parseMergeQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	th, err := parseThresholds(r, s.defaults)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows := s.merger.Merge(r.Context(), q)
	writeJSON(w, report.Build(rows, q.Level, th, time.Now()))
}

// handleHistory devuelve los snapshots persistidos del rango pedido
// (default: últimos 30 días).
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "history storage disabled", http.StatusServiceUnavailable)
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			http.Error(w, "bad from date (want YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			http.Error(w, "bad to date (want YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		to = to.AddDate(0, 0, 1) // incluir el día completo
	}

	snaps, err := s.store.History(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snaps == nil {
		snaps = []domain.Snapshot{}
	}
	writeJSON(w, snaps)
}

// parseThresholds aplica overrides de query param sobre los defaults.
func parseThresholds(r *http.Request, defaults domain.Thresholds) (domain.Thresholds, error) {
	th := defaults
	vals := r.URL.Query()

	parse := func(name string, dst *float64) error {
		v := vals.Get(name)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
	parseOpt := func(name string, dst **float64) error {
		v := vals.Get(name)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = &f
		return nil
	}

	if err := parse("min_spend", &th.MinSpend); err != nil {
		return th, err
	}
	if v := vals.Get("min_clicks"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return th, err
		}
		th.MinClicks = n
	}
	if err := parse("roas_kill", &th.RoasKill); err != nil {
		return th, err
	}
	if err := parse("roas_scale", &th.RoasScale); err != nil {
		return th, err
	}
	if err := parseOpt("cpa_kill", &th.CpaKill); err != nil {
		return th, err
	}
	if err := parseOpt("cpa_good", &th.CpaGood); err != nil {
		return th, err
	}
	return th, nil
}
