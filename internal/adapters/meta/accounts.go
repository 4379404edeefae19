package meta

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Accounts devuelve las cuentas configuradas o, en su defecto, descubre
// las cuentas accesibles con el token vía /me/adaccounts.
func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	if err := p.checkCredentials(); err != nil {
		return nil, err
	}
	if len(p.cfg.AccountIDs) > 0 {
		ids := make([]string, 0, len(p.cfg.AccountIDs))
		for _, id := range p.cfg.AccountIDs {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, strings.TrimPrefix(id, "act_"))
			}
		}
		return ids, nil
	}

	params := url.Values{}
	params.Set("access_token", p.cfg.AccessToken)
	params.Set("fields", "id,name")
	params.Set("limit", "100")
	next := fmt.Sprintf("%s/me/adaccounts?%s", p.cfg.BaseURL, params.Encode())

	var ids []string
	for next != "" {
		var page adAccountsResponse
		if err := p.client.GetJSON(ctx, next, nil, &page); err != nil {
			return nil, fmt.Errorf("meta.Accounts: %w", err)
		}
		for _, acc := range page.Data {
			ids = append(ids, strings.TrimPrefix(acc.ID, "act_"))
		}
		next = page.Paging.Next
	}
	return ids, nil
}
