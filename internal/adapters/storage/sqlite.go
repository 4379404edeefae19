package storage

// sqlite.go — histórico ligero de runs, sin ruido.
//
// Estrategia:
//   - `snapshots`: resumen por run (conteos scale/optimize/kill, best ROAS).
//     Siempre 1 fila por run.
//   - `summaries`: UNA fila por entidad evaluada (UPSERT por level+key).
//     Guarda la última decisión y el peak de ROAS observado.
//   - Cache en memoria: evita el upsert si la entidad no cambió (misma
//     decisión y < 5% de variación en spend). En cuentas estables la
//     mayoría de entidades no cambia entre runs.
//   - Prune automático al arrancar: snapshots > 90d, summaries sin ver en 30d.

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alexvidalr/adscope/internal/domain"
)

const schema = `
-- Resumen ligero por run del pipeline
CREATE TABLE IF NOT EXISTS snapshots (
    id             TEXT PRIMARY KEY,
    taken_at       DATETIME NOT NULL,
    level          TEXT     NOT NULL,
    total_rows     INTEGER  NOT NULL DEFAULT 0,
    spend          REAL     NOT NULL DEFAULT 0,
    revenue        REAL     NOT NULL DEFAULT 0,
    scale_count    INTEGER  NOT NULL DEFAULT 0,
    optimize_count INTEGER  NOT NULL DEFAULT 0,
    kill_count     INTEGER  NOT NULL DEFAULT 0,
    best_roas      REAL     NOT NULL DEFAULT 0
);

-- Una fila por entidad evaluada, sin duplicados
CREATE TABLE IF NOT EXISTS summaries (
    level      TEXT NOT NULL,
    entity_key TEXT NOT NULL,
    product    TEXT,
    campaign   TEXT,
    entity     TEXT,
    spend      REAL    NOT NULL DEFAULT 0,
    revenue    REAL    NOT NULL DEFAULT 0,
    purchases  INTEGER NOT NULL DEFAULT 0,
    roas       REAL,
    decision   TEXT    NOT NULL,
    first_seen DATETIME NOT NULL,
    last_seen  DATETIME NOT NULL,
    peak_roas  REAL    NOT NULL DEFAULT 0,
    PRIMARY KEY (level, entity_key)
);

CREATE INDEX IF NOT EXISTS idx_snap_at       ON snapshots(taken_at DESC);
CREATE INDEX IF NOT EXISTS idx_sum_decision  ON summaries(decision);
CREATE INDEX IF NOT EXISTS idx_sum_last      ON summaries(last_seen DESC);
`

const (
	retentionSnapshots = 90 * 24 * time.Hour // runs: 90 días
	retentionSummaries = 30 * 24 * time.Hour // entidades: 30 días sin aparecer
	spendChangePct     = 0.05                // 5% de cambio en spend → reescribir
)

// cachedState es el último estado guardado de una entidad.
type cachedState struct {
	decision domain.Decision
	spend    float64
}

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db    *sql.DB
	cache map[string]cachedState // level|entity_key → estado guardado
	mu    sync.Mutex
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema, limpia datos antiguos y precarga la cache.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{
		db:    db,
		cache: make(map[string]cachedState),
	}
	s.pruneOld(context.Background())
	s.warmCache(context.Background())
	return s, nil
}

// SaveReport persiste el snapshot del run y hace upsert de las entidades
// que cambiaron respecto al run anterior (usando caché en memoria).
func (s *SQLiteStorage) SaveReport(ctx context.Context, r domain.Report) error {
	if r.TotalRows == 0 && len(r.Summaries) == 0 {
		return nil
	}

	snap := r.Snapshot(uuid.NewString())
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots
			(id, taken_at, level, total_rows, spend, revenue,
			 scale_count, optimize_count, kill_count, best_roas)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.TakenAt, string(snap.Level), snap.Rows,
		snap.Spend, snap.Revenue, snap.Scale, snap.Optimize, snap.Kill, snap.BestRoas,
	); err != nil {
		return fmt.Errorf("storage.SaveReport: insert snapshot: %w", err)
	}

	toWrite := s.filterChanged(r)
	if len(toWrite) == 0 {
		return nil // nada nuevo
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveReport: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO summaries
			(level, entity_key, product, campaign, entity,
			 spend, revenue, purchases, roas, decision,
			 first_seen, last_seen, peak_roas)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(level, entity_key) DO UPDATE SET
			product   = excluded.product,
			campaign  = excluded.campaign,
			entity    = excluded.entity,
			spend     = excluded.spend,
			revenue   = excluded.revenue,
			purchases = excluded.purchases,
			roas      = excluded.roas,
			decision  = excluded.decision,
			last_seen = excluded.last_seen,
			peak_roas = MAX(peak_roas, excluded.peak_roas)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveReport: prepare: %w", err)
	}
	defer stmt.Close()

	now := r.GeneratedAt.UTC()
	for _, sum := range toWrite {
		var roas any
		peak := 0.0
		if sum.Metrics.ROAS != nil {
			roas = *sum.Metrics.ROAS
			peak = *sum.Metrics.ROAS
		}
		if _, err := stmt.ExecContext(ctx,
			string(r.Level),
			sum.Key,
			sum.Product,
			sum.Campaign,
			sum.Entity,
			sum.Metrics.Spend,
			sum.Metrics.Revenue,
			sum.Metrics.Purchases,
			roas,
			sum.Decision.String(),
			now, // first_seen: ignorado en ON CONFLICT (no se sobreescribe)
			now, // last_seen
			peak,
		); err != nil {
			return fmt.Errorf("storage.SaveReport: upsert %q: %w", sum.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveReport: commit: %w", err)
	}
	return nil
}

// History devuelve los snapshots de runs cuyo taken_at está en el rango dado,
// los más recientes primero.
func (s *SQLiteStorage) History(ctx context.Context, from, to time.Time) ([]domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, taken_at, level, total_rows, spend, revenue,
		       scale_count, optimize_count, kill_count, best_roas
		FROM snapshots
		WHERE taken_at BETWEEN ? AND ?
		ORDER BY taken_at DESC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.History: query: %w", err)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		var snap domain.Snapshot
		var takenAt, level string
		if err := rows.Scan(
			&snap.ID, &takenAt, &level, &snap.Rows, &snap.Spend, &snap.Revenue,
			&snap.Scale, &snap.Optimize, &snap.Kill, &snap.BestRoas,
		); err != nil {
			return nil, fmt.Errorf("storage.History: scan row: %w", err)
		}
		snap.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		snap.Level = domain.Level(level)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// filterChanged devuelve las entidades cuyo estado cambió respecto a la
// caché, y actualiza la caché con el nuevo estado.
func (s *SQLiteStorage) filterChanged(r domain.Report) []domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var toWrite []domain.Summary
	for _, sum := range r.Summaries {
		key := string(r.Level) + "|" + sum.Key
		if prev, ok := s.cache[key]; ok {
			unchanged := prev.decision == sum.Decision &&
				relChange(prev.spend, sum.Metrics.Spend) < spendChangePct
			if unchanged {
				continue
			}
		}
		toWrite = append(toWrite, sum)
		s.cache[key] = cachedState{decision: sum.Decision, spend: sum.Metrics.Spend}
	}
	return toWrite
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoffSnaps := time.Now().UTC().Add(-retentionSnapshots)
	cutoffSums := time.Now().UTC().Add(-retentionSummaries)
	s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE taken_at < ?`, cutoffSnaps)
	s.db.ExecContext(ctx, `DELETE FROM summaries WHERE last_seen < ?`, cutoffSums)
}

// warmCache precarga la caché desde la DB al arrancar, evitando escrituras
// redundantes en el primer run tras un reinicio.
func (s *SQLiteStorage) warmCache(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, entity_key, decision, spend FROM summaries`,
	)
	if err != nil {
		return
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var level, key, decision string
		var spend float64
		if rows.Scan(&level, &key, &decision, &spend) == nil {
			s.cache[level+"|"+key] = cachedState{
				decision: domain.ParseDecision(decision),
				spend:    spend,
			}
		}
	}
}

// relChange devuelve el cambio relativo entre dos valores (0.0 – ∞).
func relChange(old, new float64) float64 {
	if old == 0 {
		return 1.0 // forzar escritura si antes era 0
	}
	return math.Abs(new-old) / math.Abs(old)
}
