package ports

import (
	"context"
	"time"

	"github.com/alexvidalr/adscope/internal/domain"
)

// Storage persiste el histórico de evaluaciones.
type Storage interface {
	// SaveReport guarda el snapshot del run y hace upsert de los summaries.
	SaveReport(ctx context.Context, report domain.Report) error

	// History devuelve los snapshots del rango dado, más recientes primero.
	History(ctx context.Context, from, to time.Time) ([]domain.Snapshot, error)

	Close() error
}

// Notifier presenta un Report al usuario (consola, etc.).
type Notifier interface {
	Notify(ctx context.Context, report domain.Report) error
}
