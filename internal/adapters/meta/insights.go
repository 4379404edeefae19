package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

// insightFields devuelve los campos a pedir según el nivel de desglose.
func insightFields(level domain.Level) string {
	base := "account_id,account_name,impressions,clicks,spend,actions,action_values"
	switch level {
	case domain.LevelCampaign:
		return "campaign_name," + base
	case domain.LevelAdset:
		return "campaign_name,adset_name," + base
	default:
		return "campaign_name,adset_name,ad_name," + base
	}
}

// fetchInsights recorre todas las páginas de /insights para una cuenta.
// breakdown, si no está vacío, añade ese desglose de audiencia a la query.
func (p *Provider) fetchInsights(ctx context.Context, q ports.FetchQuery, breakdown string) ([]insightRecord, error) {
	if q.AccountID == "" {
		return nil, fmt.Errorf("meta: account id required")
	}

	params := url.Values{}
	params.Set("access_token", p.cfg.AccessToken)
	params.Set("level", string(q.Level))
	params.Set("fields", insightFields(q.Level))
	params.Set("time_increment", "1")
	params.Set("limit", fmt.Sprint(pageLimit))
	if breakdown != "" {
		params.Set("breakdowns", breakdown)
	}

	tr, err := json.Marshal(map[string]string{
		"since": q.From,
		"until": q.To,
	})
	if err != nil {
		return nil, fmt.Errorf("meta: marshal time_range: %w", err)
	}
	params.Set("time_range", string(tr))

	account := strings.TrimPrefix(q.AccountID, "act_")
	next := fmt.Sprintf("%s/act_%s/insights?%s", p.cfg.BaseURL, account, params.Encode())

	var records []insightRecord
	for next != "" {
		var page insightsResponse
		if err := p.client.GetJSON(ctx, next, nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Data...)
		// paging.next ya es la URL completa de la siguiente página.
		next = page.Paging.Next
	}
	return records, nil
}

// toRow normaliza un registro de insights al modelo de filas común.
func (p *Provider) toRow(rec insightRecord, level domain.Level) domain.Row {
	row := domain.Row{
		Date:        rec.DateStart,
		Channel:     domain.ChannelMeta,
		Campaign:    domain.NameOr(rec.CampaignName, domain.NoCampaign),
		Adset:       rec.AdsetName,
		Impressions: rec.Impressions.NonNegative(),
		Clicks:      rec.Clicks.NonNegative(),
		Leads:       pickAction(rec.Actions, leadActions),
		Checkouts:   pickAction(rec.Actions, checkoutActions),
		Purchases:   pickAction(rec.Actions, purchaseActions),
		AdSpend:     rec.Spend.Value(),
		Revenue:     pickActionValue(rec.ActionValues, purchaseActions),
		AccountID:   rec.AccountID,
		AccountName: rec.AccountName,
	}
	switch level {
	case domain.LevelCampaign:
		row.Ad = row.Campaign
	case domain.LevelAdset:
		row.Ad = domain.NameOr(rec.AdsetName, domain.NoAdset)
	default:
		row.Ad = domain.NameOr(rec.AdName, domain.NoAd)
	}
	row.Product = domain.DeriveProduct(row.Campaign)
	return row
}
