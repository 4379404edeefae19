package meta

import "github.com/alexvidalr/adscope/internal/adapters/jsonx"

// insightsResponse es la página del endpoint /insights. La Graph API
// serializa las métricas numéricas como strings, de ahí los tipos jsonx.
type insightsResponse struct {
	Data   []insightRecord `json:"data"`
	Paging paging          `json:"paging"`
}

type paging struct {
	Next string `json:"next"`
}

type insightRecord struct {
	DateStart    string        `json:"date_start"`
	AccountID    string        `json:"account_id"`
	AccountName  string        `json:"account_name"`
	CampaignName string        `json:"campaign_name"`
	AdsetName    string        `json:"adset_name"`
	AdName       string        `json:"ad_name"`
	Impressions  jsonx.Int     `json:"impressions"`
	Clicks       jsonx.Int     `json:"clicks"`
	Spend        jsonx.Float   `json:"spend"`
	Actions      []actionValue `json:"actions"`
	ActionValues []actionValue `json:"action_values"`

	// Breakdowns: sólo viene el solicitado en cada query de dimensiones.
	PublisherPlatform string `json:"publisher_platform"`
	PlatformPosition  string `json:"platform_position"`
	ImpressionDevice  string `json:"impression_device"`
	Country           string `json:"country"`
	Age               string `json:"age"`
}

// actionValue es una entrada de actions/action_values: tipo de conversión
// y su valor acumulado.
type actionValue struct {
	ActionType string      `json:"action_type"`
	Value      jsonx.Float `json:"value"`
}

// adAccountsResponse es la página de /me/adaccounts.
type adAccountsResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
	Paging paging `json:"paging"`
}
