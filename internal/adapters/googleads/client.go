// Package googleads implementa el ChannelProvider de Google Ads sobre la
// REST API (googleAds:search con GAQL), con OAuth por refresh token.
package googleads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/alexvidalr/adscope/internal/adapters/httpc"
	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

const (
	defaultBaseURL  = "https://googleads.googleapis.com/v17"
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultTimeout  = 20 * time.Second

	// tokenSlack renueva el access token antes de su expiración real.
	tokenSlack = 60 * time.Second
)

// Config agrupa credenciales y tuning del adapter de Google Ads.
type Config struct {
	DeveloperToken  string        `yaml:"developer_token"`
	ClientID        string        `yaml:"client_id"`
	ClientSecret    string        `yaml:"client_secret"`
	RefreshToken    string        `yaml:"refresh_token"`
	CustomerIDs     []string      `yaml:"customer_ids"`
	LoginCustomerID string        `yaml:"login_customer_id"`
	BaseURL         string        `yaml:"base_url"`
	TokenURL        string        `yaml:"token_url"`
	Timeout         time.Duration `yaml:"timeout"`
	RatePerSec      float64       `yaml:"rate_per_sec"`
}

// Provider es el ChannelProvider de Google Ads.
type Provider struct {
	cfg    Config
	client *httpc.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New crea el Provider con defaults para lo no configurado.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
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
func (p *Provider) Channel() string { return domain.ChannelGoogle }

// Enabled indica si el adapter tiene credenciales para operar.
func (p *Provider) Enabled() bool {
	return p.cfg.DeveloperToken != "" && p.cfg.ClientID != "" &&
		p.cfg.ClientSecret != "" && p.cfg.RefreshToken != ""
}

func (p *Provider) checkCredentials() error {
	if !p.Enabled() {
		return fmt.Errorf("googleads: %w", ports.ErrCredentialsMissing)
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token devuelve un access token válido, renovando vía refresh token grant
// cuando el cacheado expiró.
func (p *Provider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("refresh_token", p.cfg.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("googleads: token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpClient := &http.Client{Timeout: p.cfg.Timeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("googleads: token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("googleads: token exchange status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("googleads: token decode: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("googleads: token exchange returned empty access token")
	}

	p.accessToken = tok.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSlack)
	return p.accessToken, nil
}

// headers construye los headers de autenticación de la Google Ads API.
func (p *Provider) headers(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("developer-token", p.cfg.DeveloperToken)
	if p.cfg.LoginCustomerID != "" {
		h.Set("login-customer-id", normalizeCustomerID(p.cfg.LoginCustomerID))
	}
	return h
}

// Accounts devuelve los customer IDs configurados o los descubre vía
// customers:listAccessibleCustomers.
func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}
	if len(p.cfg.CustomerIDs) > 0 {
		ids := make([]string, 0, len(p.cfg.CustomerIDs))
		for _, id := range p.cfg.CustomerIDs {
			if id = normalizeCustomerID(id); id != "" {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	token, err := p.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("googleads.Accounts: %w", err)
	}

	var out struct {
		ResourceNames []string `json:"resourceNames"`
	}
	u := p.cfg.BaseURL + "/customers:listAccessibleCustomers"
	if err := p.client.GetJSON(ctx, u, p.headers(token), &out); err != nil {
		return nil, fmt.Errorf("googleads.Accounts: %w", err)
	}

	ids := make([]string, 0, len(out.ResourceNames))
	for _, rn := range out.ResourceNames {
		ids = append(ids, strings.TrimPrefix(rn, "customers/"))
	}
	return ids, nil
}

// normalizeCustomerID limpia los guiones del formato "123-456-7890".
func normalizeCustomerID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}
