// Package tiktok implementa el ChannelProvider de TikTok Ads sobre el
// endpoint de reporting integrado de la Business API v1.3.
package tiktok

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexvidalr/adscope/internal/adapters/httpc"
	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

const (
	defaultBaseURL = "https://business-api.tiktok.com/open_api/v1.3"
	defaultTimeout = 20 * time.Second

	pageSize = 200
)

// Config agrupa credenciales y tuning del adapter de TikTok.
type Config struct {
	AccessToken   string        `yaml:"access_token"`
	AdvertiserIDs []string      `yaml:"advertiser_ids"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSec    float64       `yaml:"rate_per_sec"`
}

// Provider es el ChannelProvider de TikTok Ads.
type Provider struct {
	cfg    Config
	client *httpc.Client
}

// New crea el Provider con defaults para lo no configurado.
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
func (p *Provider) Channel() string { return domain.ChannelTikTok }

// Enabled indica si el adapter tiene credenciales para operar.
func (p *Provider) Enabled() bool { return p.cfg.AccessToken != "" }

func (p *Provider) checkCredentials() error {
	if p.cfg.AccessToken == "" {
		return fmt.Errorf("tiktok: %w", ports.ErrCredentialsMissing)
	}
	return nil
}

func (p *Provider) headers() http.Header {
	h := http.Header{}
	h.Set("Access-Token", p.cfg.AccessToken)
	return h
}

// Accounts devuelve los advertiser IDs configurados. La Business API no
// expone discovery con sólo el access token, así que la lista es explícita.
func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(p.cfg.AdvertiserIDs))
	for _, id := range p.cfg.AdvertiserIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
