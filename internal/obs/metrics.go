// Package obs registra las métricas Prometheus del pipeline.
//
// La tolerancia a fallas parciales hace que "no data" y "fuente caída" sean
// indistinguibles para el caller del merge; estos contadores son la vía para
// distinguirlos en observabilidad.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal cuenta llamadas a adapters por canal y resultado.
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adscope",
		Name:      "adapter_fetch_total",
		Help:      "Adapter calls by channel and outcome.",
	}, []string{"channel", "outcome"})

	// FetchRows cuenta rows normalizadas emitidas por canal.
	FetchRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adscope",
		Name:      "adapter_rows_total",
		Help:      "Normalized rows returned by channel.",
	}, []string{"channel"})

	// FetchDuration mide la latencia de cada llamada a adapter.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "adscope",
		Name:      "adapter_fetch_duration_seconds",
		Help:      "Adapter call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"channel"})

	// HTTPDuration mide la latencia de requests HTTP servidos.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "adscope",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// Resultados para FetchTotal.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
