// Package merge implementa el orquestador multi-canal: fan-out concurrente a
// los adapters habilitados con tolerancia a fallas parciales.
//
// Invariante central: una llamada fallida nunca cancela ni corrompe los
// resultados de las demás. Un dashboard con datos parciales vale más que uno
// vacío porque la API de un vendor está caída.
package merge

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/obs"
	"github.com/alexvidalr/adscope/internal/ports"
)

// defaultFetchTimeout es el deadline por llamada cuando el config no fija uno.
const defaultFetchTimeout = 30 * time.Second

// Orchestrator hace fan-out sobre los providers registrados y concatena los
// resultados exitosos.
type Orchestrator struct {
	providers []ports.ChannelProvider
	timeout   time.Duration
}

// New crea un Orchestrator. timeout <= 0 usa el default.
func New(providers []ports.ChannelProvider, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Orchestrator{providers: providers, timeout: timeout}
}

// call es una llamada individual planificada: un provider y una cuenta.
type call struct {
	provider ports.ChannelProvider
	account  string
}

// Merge ejecuta la query: resuelve las llamadas (canal × cuenta), las lanza
// todas en paralelo con deadline individual, espera todos los outcomes y
// devuelve la concatenación de los exitosos.
//
// El orden del resultado no es contrato: la agrupación downstream es
// independiente del orden. Si todas las llamadas fallan, el resultado es un
// row set vacío, no un error — "no data" y "todo caído" son lo mismo para el
// caller (los contadores de obs los distinguen).
func (o *Orchestrator) Merge(ctx context.Context, q Query) []domain.Row {
	calls := o.plan(ctx, q)
	if len(calls) == 0 {
		return []domain.Row{}
	}

	type outcome struct {
		channel string
		account string
		rows    []domain.Row
		err     error
	}

	resultCh := make(chan outcome, len(calls))
	var wg sync.WaitGroup

	for _, c := range calls {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			start := time.Now()
			rows, err := c.provider.Fetch(callCtx, ports.FetchQuery{
				Level:       q.Level,
				From:        q.From,
				To:          q.To,
				AccountID:   c.account,
				IncludeDims: q.IncludeDims,
			})
			obs.FetchDuration.WithLabelValues(c.provider.Channel()).
				Observe(time.Since(start).Seconds())
			resultCh <- outcome{channel: c.provider.Channel(), account: c.account, rows: rows, err: err}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	merged := make([]domain.Row, 0, 256)
	failed := 0
	for r := range resultCh {
		if r.err != nil {
			failed++
			obs.FetchTotal.WithLabelValues(r.channel, obs.OutcomeError).Inc()
			// Un timeout cuenta igual que cualquier otra falla de adapter.
			slog.Warn("adapter call failed, excluded from merge",
				"channel", r.channel,
				"account", r.account,
				"err", r.err,
			)
			continue
		}
		obs.FetchTotal.WithLabelValues(r.channel, obs.OutcomeOK).Inc()
		obs.FetchRows.WithLabelValues(r.channel).Add(float64(len(r.rows)))
		merged = append(merged, r.rows...)
	}

	slog.Info("merge complete",
		"calls", len(calls),
		"failed", failed,
		"rows", len(merged),
		"level", q.Level,
		"from", q.From,
		"to", q.To,
	)
	return merged
}

// plan resuelve la lista de llamadas: una por canal habilitado × cuenta.
// Con account específico hay exactamente una llamada por canal; con "all"
// (u omitido) se consulta la lista de cuentas del provider, y si está vacía
// se cae a una sola llamada con la cuenta default.
func (o *Orchestrator) plan(ctx context.Context, q Query) []call {
	var calls []call
	for _, p := range o.providers {
		if !q.wantsChannel(strings.ToLower(p.Channel())) {
			continue
		}

		if q.Account != "" && q.Account != AccountAll {
			calls = append(calls, call{provider: p, account: q.Account})
			continue
		}

		// El discovery corre con el mismo deadline que los fetch: un vendor
		// lento listando cuentas no puede demorar el merge entero.
		discCtx, cancel := context.WithTimeout(ctx, o.timeout)
		accounts, err := p.Accounts(discCtx)
		cancel()
		if err != nil {
			slog.Debug("account discovery failed, using default account",
				"channel", p.Channel(), "err", err)
			accounts = nil
		}
		if len(accounts) == 0 {
			calls = append(calls, call{provider: p, account: ""})
			continue
		}
		for _, acc := range accounts {
			calls = append(calls, call{provider: p, account: acc})
		}
	}
	return calls
}
