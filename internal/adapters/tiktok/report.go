package tiktok

import (
	"context"
	"fmt"

	"github.com/alexvidalr/adscope/internal/adapters/jsonx"
	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

// reportRequest es el body de /report/integrated/get.
type reportRequest struct {
	AdvertiserID string   `json:"advertiser_id"`
	ReportType   string   `json:"report_type"`
	DataLevel    string   `json:"data_level"`
	Dimensions   []string `json:"dimensions"`
	Metrics      []string `json:"metrics"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Page         int      `json:"page"`
	PageSize     int      `json:"page_size"`
}

// reportResponse es el sobre común de la Business API: code 0 es éxito,
// cualquier otro es error con detalle en message.
type reportResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		List []struct {
			Dimensions struct {
				StatTimeDay string `json:"stat_time_day"`
			} `json:"dimensions"`
			Metrics reportMetrics `json:"metrics"`
		} `json:"list"`
		PageInfo struct {
			Page      int `json:"page"`
			TotalPage int `json:"total_page"`
		} `json:"page_info"`
	} `json:"data"`
}

// reportMetrics agrupa métricas y nombres: la API devuelve todo como strings
// dentro del bloque metrics, incluidos los nombres de entidad.
type reportMetrics struct {
	CampaignName   string      `json:"campaign_name"`
	AdgroupName    string      `json:"adgroup_name"`
	AdName         string      `json:"ad_name"`
	AdvertiserName string      `json:"advertiser_name"`
	Impressions    jsonx.Int   `json:"impressions"`
	Clicks         jsonx.Int   `json:"clicks"`
	Spend          jsonx.Float `json:"spend"`
	Leads          jsonx.Int   `json:"lead"`
	Checkouts      jsonx.Int   `json:"checkout"`
	Purchases      jsonx.Int   `json:"purchase"`
	Revenue        jsonx.Float `json:"purchase_value"`
}

// levelParams mapea el nivel común a data_level y dimensión de la API.
func levelParams(level domain.Level) (dataLevel, idDim string) {
	switch level {
	case domain.LevelCampaign:
		return "AUCTION_CAMPAIGN", "campaign_id"
	case domain.LevelAdset:
		return "AUCTION_ADGROUP", "adgroup_id"
	default:
		return "AUCTION_AD", "ad_id"
	}
}

func metricsFor(level domain.Level) []string {
	m := []string{
		"campaign_name", "advertiser_name",
		"impressions", "clicks", "spend",
		"lead", "checkout", "purchase", "purchase_value",
	}
	switch level {
	case domain.LevelAdset:
		m = append(m, "adgroup_name")
	case domain.LevelAd:
		m = append(m, "adgroup_name", "ad_name")
	}
	return m
}

// Fetch descarga las filas del nivel pedido para un advertiser, paginando
// hasta total_page.
func (p *Provider) Fetch(ctx context.Context, q ports.FetchQuery) ([]domain.Row, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}
	if q.AccountID == "" {
		return nil, fmt.Errorf("tiktok.Fetch: advertiser id required")
	}

	dataLevel, idDim := levelParams(q.Level)
	req := reportRequest{
		AdvertiserID: q.AccountID,
		ReportType:   "BASIC",
		DataLevel:    dataLevel,
		Dimensions:   []string{idDim, "stat_time_day"},
		Metrics:      metricsFor(q.Level),
		StartDate:    q.From,
		EndDate:      q.To,
		Page:         1,
		PageSize:     pageSize,
	}
	u := p.cfg.BaseURL + "/report/integrated/get/"

	var rows []domain.Row
	for {
		var resp reportResponse
		if err := p.client.PostJSON(ctx, u, p.headers(), req, &resp); err != nil {
			return nil, fmt.Errorf("tiktok.Fetch: %w", err)
		}
		if resp.Code != 0 {
			return nil, fmt.Errorf("tiktok.Fetch: api code %d: %s", resp.Code, resp.Message)
		}
		for _, item := range resp.Data.List {
			rows = append(rows, toRow(item.Dimensions.StatTimeDay, item.Metrics, q))
		}
		if req.Page >= resp.Data.PageInfo.TotalPage {
			return rows, nil
		}
		req.Page++
	}
}

// toRow normaliza una entrada del reporte al modelo de filas común.
func toRow(statDay string, m reportMetrics, q ports.FetchQuery) domain.Row {
	// stat_time_day llega como "2026-08-01 00:00:00"; sólo interesa el día.
	if len(statDay) > 10 {
		statDay = statDay[:10]
	}
	row := domain.Row{
		Date:        statDay,
		Channel:     domain.ChannelTikTok,
		Campaign:    domain.NameOr(m.CampaignName, domain.NoCampaign),
		Adset:       m.AdgroupName,
		Impressions: m.Impressions.NonNegative(),
		Clicks:      m.Clicks.NonNegative(),
		Leads:       m.Leads.NonNegative(),
		Checkouts:   m.Checkouts.NonNegative(),
		Purchases:   m.Purchases.NonNegative(),
		AdSpend:     m.Spend.Value(),
		Revenue:     m.Revenue.Value(),
		AccountID:   q.AccountID,
		AccountName: m.AdvertiserName,
	}
	switch q.Level {
	case domain.LevelCampaign:
		row.Ad = row.Campaign
	case domain.LevelAdset:
		row.Ad = domain.NameOr(m.AdgroupName, domain.NoAdset)
	default:
		// Algunos formatos de ad no traen nombre; cae al adgroup.
		name := m.AdName
		if name == "" {
			name = m.AdgroupName
		}
		row.Ad = domain.NameOr(name, domain.NoAd)
	}
	row.Product = domain.DeriveProduct(row.Campaign)
	return row
}
