package domain

import (
	"fmt"
	"strings"
)

// Level es la granularidad del reporte: ad, adset o campaign.
type Level string

const (
	LevelAd       Level = "ad"
	LevelAdset    Level = "adset"
	LevelCampaign Level = "campaign"
)

// ParseLevel valida y normaliza un level recibido como string.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelAd, "":
		return LevelAd, nil
	case LevelAdset:
		return LevelAdset, nil
	case LevelCampaign:
		return LevelCampaign, nil
	}
	return "", fmt.Errorf("domain.ParseLevel: invalid level %q", s)
}

// Canales conocidos. Channel es un string abierto: canales futuros
// (YouTube, etc.) no requieren cambios en el modelo.
const (
	ChannelMeta   = "Meta"
	ChannelGoogle = "Google"
	ChannelTikTok = "TikTok"
)

// Placeholders para nombres ausentes — nunca string vacío silencioso.
const (
	NoCampaign = "(no campaign)"
	NoAdset    = "(no adset)"
	NoAd       = "(no ad)"
)

// Row es una observación de performance para un día, canal y entidad.
// Es un value type inmutable: la agregación nunca muta rows fuente.
// Todo campo numérico es 0 ante input ausente o malformado — nunca NaN.
type Row struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Channel  string `json:"channel"`
	Campaign string `json:"campaign"`
	Product  string `json:"product"`
	Ad       string `json:"ad"`
	Adset    string `json:"adset,omitempty"` // no todos los canales/levels lo reportan

	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`
	Leads       int64 `json:"leads"`
	Checkouts   int64 `json:"checkouts"`
	Purchases   int64 `json:"purchases"`

	AdSpend float64 `json:"ad_spend"` // USD
	Revenue float64 `json:"revenue"`  // USD

	AccountID   string `json:"account_id,omitempty"`
	AccountName string `json:"account_name,omitempty"`

	// Dimensiones opcionales, pobladas solo con enrichment activado.
	Platform  string `json:"platform,omitempty"`
	Placement string `json:"placement,omitempty"`
	Device    string `json:"device,omitempty"`
	Country   string `json:"country,omitempty"`
	Age       string `json:"age,omitempty"`
}

// productDelimiters son las convenciones de nombre campaña→producto observadas
// en las cuentas reales: guion y en-dash. Se soportan ambas; gana la que
// aparezca primero en el string.
var productDelimiters = []string{" - ", " – "}

// DeriveProduct deriva el producto desde el nombre de campaña tomando el
// prefijo antes del primer delimitador. Sin delimitador, el producto es la
// campaña completa.
func DeriveProduct(campaign string) string {
	cut := -1
	for _, d := range productDelimiters {
		if i := strings.Index(campaign, d); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut < 0 {
		return strings.TrimSpace(campaign)
	}
	return strings.TrimSpace(campaign[:cut])
}

// NameOr devuelve name o el placeholder si name queda vacío tras trim.
func NameOr(name, placeholder string) string {
	if s := strings.TrimSpace(name); s != "" {
		return s
	}
	return placeholder
}

// EntityName devuelve el identificador de la entidad según el level.
func (r Row) EntityName(level Level) string {
	switch level {
	case LevelCampaign:
		return NameOr(r.Campaign, NoCampaign)
	case LevelAdset:
		return NameOr(r.Adset, NoAdset)
	default:
		return NameOr(r.Ad, NoAd)
	}
}

// CompositeKey es la clave de agrupación para filas de tabla:
// "product | campaign | entidad".
func (r Row) CompositeKey(level Level) string {
	return r.Product + " | " + r.Campaign + " | " + r.EntityName(level)
}

// IdentityKey es la clave natural de dedup de una Row dentro de un fetch:
// la misma tupla no debería aparecer dos veces salvo double-report del vendor.
func (r Row) IdentityKey(level Level) string {
	return r.Date + "|" + r.Channel + "|" + r.AccountID + "|" +
		r.Campaign + "|" + r.Adset + "|" + r.EntityName(level)
}
