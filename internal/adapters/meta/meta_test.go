package meta

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

func testProvider(serverURL string) *Provider {
	return New(Config{
		AccessToken: "test-token",
		AccountIDs:  []string{"act_123"},
		BaseURL:     serverURL,
		Timeout:     2 * time.Second,
		RatePerSec:  1000,
	})
}

func testQuery() ports.FetchQuery {
	return ports.FetchQuery{
		Level:     domain.LevelAd,
		From:      "2026-08-01",
		To:        "2026-08-07",
		AccountID: "123",
	}
}

func TestFetchMapsInsightsToRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/act_123/insights", r.URL.Path)
		assert.Equal(t, "ad", r.URL.Query().Get("level"))
		assert.Contains(t, r.URL.Query().Get("fields"), "ad_name")
		fmt.Fprint(w, `{
			"data": [{
				"date_start": "2026-08-01",
				"account_id": "123",
				"account_name": "Main",
				"campaign_name": "TOF - Prospecting",
				"adset_name": "Broad US",
				"ad_name": "UGC Hook A",
				"impressions": "1000",
				"clicks": "50",
				"spend": "120.5",
				"actions": [
					{"action_type": "lead", "value": "8"},
					{"action_type": "initiate_checkout", "value": "3"},
					{"action_type": "omni_initiated_checkout", "value": "2"},
					{"action_type": "purchase", "value": "2"},
					{"action_type": "omni_purchase", "value": "1"},
					{"action_type": "landing_page_view", "value": "40"}
				],
				"action_values": [
					{"action_type": "purchase", "value": "200.0"},
					{"action_type": "omni_purchase", "value": "95.5"}
				]
			}],
			"paging": {}
		}`)
	}))
	defer server.Close()

	rows, err := testProvider(server.URL).Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "2026-08-01", row.Date)
	assert.Equal(t, domain.ChannelMeta, row.Channel)
	assert.Equal(t, "TOF - Prospecting", row.Campaign)
	assert.Equal(t, "TOF", row.Product)
	assert.Equal(t, "UGC Hook A", row.Ad)
	assert.Equal(t, "Broad US", row.Adset)
	assert.Equal(t, int64(1000), row.Impressions)
	assert.Equal(t, int64(50), row.Clicks)
	assert.Equal(t, int64(8), row.Leads)
	assert.Equal(t, int64(5), row.Checkouts, "suma de alias initiate_checkout")
	assert.Equal(t, int64(3), row.Purchases, "suma de alias purchase")
	assert.Equal(t, 120.5, row.AdSpend)
	assert.Equal(t, 295.5, row.Revenue)
	assert.Equal(t, "Main", row.AccountName)
}

func TestFetchFollowsCursorPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") == "c2" {
			fmt.Fprint(w, `{"data": [{"date_start": "2026-08-02", "campaign_name": "B", "ad_name": "B1"}], "paging": {}}`)
			return
		}
		fmt.Fprintf(w, `{
			"data": [{"date_start": "2026-08-01", "campaign_name": "A", "ad_name": "A1"}],
			"paging": {"next": "%s/act_123/insights?after=c2"}
		}`, server.URL)
	}))
	defer server.Close()

	rows, err := testProvider(server.URL).Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A1", rows[0].Ad)
	assert.Equal(t, "B1", rows[1].Ad)
}

func TestFetchUsesPlaceholdersForMissingNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"date_start": "2026-08-01", "impressions": "10"}], "paging": {}}`)
	}))
	defer server.Close()

	rows, err := testProvider(server.URL).Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.NoCampaign, rows[0].Campaign)
	assert.Equal(t, domain.NoAd, rows[0].Ad)
}

func TestFetchCampaignLevelUsesCampaignAsEntity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "campaign", r.URL.Query().Get("level"))
		assert.NotContains(t, r.URL.Query().Get("fields"), "ad_name")
		fmt.Fprint(w, `{"data": [{"date_start": "2026-08-01", "campaign_name": "BOF – Retargeting"}], "paging": {}}`)
	}))
	defer server.Close()

	q := testQuery()
	q.Level = domain.LevelCampaign
	rows, err := testProvider(server.URL).Fetch(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BOF – Retargeting", rows[0].Ad)
	assert.Equal(t, "BOF", rows[0].Product)
}

func TestFetchWithoutTokenFails(t *testing.T) {
	p := New(Config{})
	_, err := p.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrCredentialsMissing)
	assert.False(t, p.Enabled())
}

func TestFetchSurfacesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "Invalid OAuth access token"}}`)
	}))
	defer server.Close()

	_, err := testProvider(server.URL).Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestAccountsReturnsConfiguredIDs(t *testing.T) {
	p := New(Config{AccessToken: "tok", AccountIDs: []string{"act_123", " 456 ", ""}})
	ids, err := p.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"123", "456"}, ids)
}

func TestAccountsDiscoversViaGraphAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/adaccounts", r.URL.Path)
		fmt.Fprint(w, `{
			"data": [{"id": "act_111", "name": "One"}, {"id": "act_222", "name": "Two"}],
			"paging": {}
		}`)
	}))
	defer server.Close()

	p := New(Config{AccessToken: "tok", BaseURL: server.URL, RatePerSec: 1000})
	ids, err := p.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222"}, ids)
}

func TestFetchEnrichesDimensions(t *testing.T) {
	base := `"date_start": "2026-08-01", "account_id": "123", "campaign_name": "TOF - P", "adset_name": "AS", "ad_name": "A1"`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("breakdowns") {
		case "":
			fmt.Fprintf(w, `{"data": [{%s, "spend": "100"}], "paging": {}}`, base)
		case "publisher_platform":
			// Instagram gana por purchases aunque Facebook tenga más leads.
			fmt.Fprintf(w, `{"data": [
				{%s, "publisher_platform": "facebook", "actions": [{"action_type": "lead", "value": "9"}]},
				{%s, "publisher_platform": "instagram", "actions": [{"action_type": "purchase", "value": "3"}]}
			], "paging": {}}`, base, base)
		case "country":
			fmt.Fprintf(w, `{"data": [{%s, "country": "US", "actions": [{"action_type": "lead", "value": "2"}]}], "paging": {}}`, base)
		default:
			fmt.Fprint(w, `{"data": [], "paging": {}}`)
		}
	}))
	defer server.Close()

	q := testQuery()
	q.IncludeDims = true
	rows, err := testProvider(server.URL).Fetch(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "instagram", rows[0].Platform)
	assert.Equal(t, "US", rows[0].Country)
	assert.Empty(t, rows[0].Device, "sin datos de breakdown no hay etiqueta")
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, domain.ChannelMeta, New(Config{}).Channel())
}
