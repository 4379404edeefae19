// Package httpapi expone el pipeline por HTTP: merge multi-canal, fetch por
// canal, report clasificado e histórico de runs, más health y metrics.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexvidalr/adscope/internal/application/merge"
	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

// Server agrupa las dependencias de los handlers.
type Server struct {
	log       *slog.Logger
	merger    *merge.Orchestrator
	providers map[string]ports.ChannelProvider // key: canal en minúsculas
	store     ports.Storage                    // nil = histórico deshabilitado
	defaults  domain.Thresholds
}

// NewServer construye el Server. store puede ser nil si el histórico está
// deshabilitado en config.
func NewServer(log *slog.Logger, merger *merge.Orchestrator,
	providers []ports.ChannelProvider, store ports.Storage,
	defaults domain.Thresholds) *Server {

	byName := make(map[string]ports.ChannelProvider, len(providers))
	for _, p := range providers {
		byName[strings.ToLower(p.Channel())] = p
	}
	return &Server{
		log:       log,
		merger:    merger,
		providers: byName,
		store:     store,
		defaults:  defaults,
	}
}

// Router monta las rutas con el middleware ambiental.
func (s *Server) Router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(RequestID)
	mux.Use(Logger(s.log))
	mux.Use(Metrics)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.Get("/api/merge", s.handleMerge)
	mux.Get("/api/channels/{channel}", s.handleChannel)
	mux.Get("/api/report", s.handleReport)
	mux.Get("/api/history", s.handleHistory)

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
