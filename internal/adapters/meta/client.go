// Package meta implementa el ChannelProvider de Meta Ads sobre la
// Graph API (endpoint /insights), con paginación por cursor y
// normalización de actions al modelo de filas común.
package meta

import (
	"context"
	"fmt"
	"time"

	"github.com/alexvidalr/adscope/internal/adapters/httpc"
	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

const (
	defaultBaseURL = "https://graph.facebook.com/v21.0"
	defaultTimeout = 20 * time.Second

	// pageLimit es el tamaño de página pedido a la Graph API.
	pageLimit = 500
)

// Config agrupa credenciales y tuning del adapter de Meta.
type Config struct {
	AccessToken string        `yaml:"access_token"`
	AccountIDs  []string      `yaml:"account_ids"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	RatePerSec  float64       `yaml:"rate_per_sec"`
}

// Provider es el ChannelProvider de Meta Ads.
type Provider struct {
	cfg    Config
	client *httpc.Client
}

// New crea el Provider con defaults razonables para lo no configurado.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	return &Provider{
		cfg:    cfg,
		client: httpc.New(cfg.Timeout, cfg.RatePerSec, 5),
	}
}

// Channel devuelve el identificador canónico del canal.
func (p *Provider) Channel() string { return domain.ChannelMeta }

// Enabled indica si el adapter tiene credenciales para operar.
func (p *Provider) Enabled() bool { return p.cfg.AccessToken != "" }

func (p *Provider) checkCredentials() error {
	if p.cfg.AccessToken == "" {
		return fmt.Errorf("meta: %w", ports.ErrCredentialsMissing)
	}
	return nil
}

// Fetch descarga las filas del nivel pedido y, si la query lo solicita,
// las enriquece con dimensiones de audiencia.
func (p *Provider) Fetch(ctx context.Context, q ports.FetchQuery) ([]domain.Row, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}

	records, err := p.fetchInsights(ctx, q, "")
	if err != nil {
		return nil, fmt.Errorf("meta.Fetch: %w", err)
	}

	rows := make([]domain.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, p.toRow(rec, q.Level))
	}

	if q.IncludeDims {
		if err := p.enrichDimensions(ctx, q, rows); err != nil {
			return nil, fmt.Errorf("meta.Fetch: dimensions: %w", err)
		}
	}
	return rows, nil
}
