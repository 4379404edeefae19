package ports

import (
	"context"
	"errors"

	"github.com/alexvidalr/adscope/internal/domain"
)

// ErrCredentialsMissing lo devuelve un adapter que rechaza la llamada por
// configuración incompleta. El orquestador lo trata igual que un error
// de upstream: la fuente queda fuera del merge, sin abortar el batch.
var ErrCredentialsMissing = errors.New("credentials missing")

// FetchQuery son los parámetros de una llamada individual a un adapter.
// From/To ya vienen resueltos (el orquestador traduce los date presets).
type FetchQuery struct {
	Level       domain.Level
	From        string // YYYY-MM-DD
	To          string // YYYY-MM-DD
	AccountID   string // vacío = cuenta default del adapter
	IncludeDims bool
}

// ChannelProvider es un adapter de canal: traduce la API del vendor al
// Row model unificado.
//
// Contrato: Fetch es todo-o-nada — o devuelve el set completo de rows de la
// llamada o un único error; nunca rows parciales más error. Cada métrica se
// parsea defensivamente (ausente/malformada → 0) y las unidades del vendor
// (micro-moneda, etc.) se convierten en el boundary del adapter.
type ChannelProvider interface {
	// Channel devuelve el identificador de canal que el adapter estampa
	// en sus rows ("Meta", "Google", "TikTok").
	Channel() string

	// Accounts devuelve los account ids sobre los que el orquestador debe
	// hacer fan-out. Lista vacía = una sola llamada con la cuenta default.
	Accounts(ctx context.Context) ([]string, error)

	// Fetch trae y mapea las rows del rango pedido para una cuenta.
	Fetch(ctx context.Context, q FetchQuery) ([]domain.Row, error)
}
