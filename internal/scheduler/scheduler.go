// Package scheduler ejecuta el pipeline completo en intervalos cron:
// merge multi-canal → report clasificado → notificación → persistencia.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alexvidalr/adscope/internal/application/merge"
	"github.com/alexvidalr/adscope/internal/application/report"
	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

// Scheduler corre el pipeline como tarea periódica.
type Scheduler struct {
	cron       *cron.Cron
	merger     *merge.Orchestrator
	store      ports.Storage // nil = sin histórico
	notifier   ports.Notifier
	query      merge.Query
	thresholds domain.Thresholds
	ctx        context.Context
}

// New crea el Scheduler. query es la query base de cada run (se re-normaliza
// en cada ejecución para que los presets relativos avancen con el reloj).
func New(ctx context.Context, merger *merge.Orchestrator, store ports.Storage,
	notifier ports.Notifier, query merge.Query, th domain.Thresholds) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		merger:     merger,
		store:      store,
		notifier:   notifier,
		query:      query,
		thresholds: th,
		ctx:        ctx,
	}
}

// Register registra el run periódico con el spec cron dado.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("scheduler.Register: %q: %w", spec, err)
	}
	return nil
}

// Start arranca el scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started")
}

// Stop para el scheduler y espera a que termine el run en curso.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler stopped")
}

// RunNow ejecuta el pipeline inmediatamente (trigger manual o run-on-start).
func (s *Scheduler) RunNow() error {
	return s.run()
}

func (s *Scheduler) runTask() {
	if err := s.run(); err != nil {
		slog.Error("scheduled run failed", "err", err)
	}
}

// run es un ciclo completo del pipeline.
func (s *Scheduler) run() error {
	start := time.Now()

	q := s.query
	if err := q.Normalize(time.Now()); err != nil {
		return fmt.Errorf("scheduler.run: %w", err)
	}

	rows := s.merger.Merge(s.ctx, q)
	r := report.Build(rows, q.Level, s.thresholds, time.Now())

	if err := s.notifier.Notify(s.ctx, r); err != nil {
		slog.Error("notify failed", "err", err)
	}

	if s.store != nil {
		if err := s.store.SaveReport(s.ctx, r); err != nil {
			return fmt.Errorf("scheduler.run: save report: %w", err)
		}
	}

	slog.Info("scheduled run complete",
		"rows", r.TotalRows,
		"entities", len(r.Summaries),
		"took", time.Since(start),
	)
	return nil
}
