package merge

import (
	"fmt"
	"time"

	"github.com/alexvidalr/adscope/internal/domain"
)

// ChannelAll acepta cualquier canal habilitado.
const ChannelAll = "all"

// AccountAll dispara el fan-out multicuenta.
const AccountAll = "all"

// datePresets mapea cada preset relativo a su cantidad de días hacia atrás.
var datePresets = map[string]int{
	"last_24h": 1,
	"last_48h": 2,
	"last_7d":  7,
	"last_30d": 30,
	"last_60d": 60,
	"last_90d": 90,
}

// DefaultPreset se usa cuando el caller no indica rango ni preset.
const DefaultPreset = "last_30d"

// Query son los parámetros de un merge multi-canal.
type Query struct {
	Level       domain.Level
	Channel     string // "all" | "meta" | "google" | "tiktok"
	Account     string // "" | "all" | account id
	From        string // YYYY-MM-DD, junto con To pisa al preset
	To          string
	DatePreset  string
	IncludeDims bool
}

// Normalize valida la query y resuelve el rango de fechas efectivo.
// Un rango explícito From/To tiene prioridad sobre el preset.
func (q *Query) Normalize(now time.Time) error {
	level, err := domain.ParseLevel(string(q.Level))
	if err != nil {
		return err
	}
	q.Level = level

	switch q.Channel {
	case "", ChannelAll:
		q.Channel = ChannelAll
	case "meta", "google", "tiktok":
	default:
		return fmt.Errorf("merge.Query: invalid channel %q", q.Channel)
	}

	if q.From != "" || q.To != "" {
		if err := validDate(q.From); err != nil {
			return err
		}
		if err := validDate(q.To); err != nil {
			return err
		}
		q.DatePreset = ""
		return nil
	}

	preset := q.DatePreset
	if preset == "" {
		preset = DefaultPreset
	}
	days, ok := datePresets[preset]
	if !ok {
		return fmt.Errorf("merge.Query: invalid date_preset %q", preset)
	}
	q.DatePreset = preset
	q.To = now.UTC().Format("2006-01-02")
	q.From = now.UTC().AddDate(0, 0, -days).Format("2006-01-02")
	return nil
}

// wantsChannel decide si un canal entra en este merge. El match es por
// nombre en minúsculas ("meta", "google", "tiktok").
func (q Query) wantsChannel(channelKey string) bool {
	return q.Channel == ChannelAll || q.Channel == channelKey
}

func validDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("merge.Query: invalid date %q (want YYYY-MM-DD)", s)
	}
	return nil
}
