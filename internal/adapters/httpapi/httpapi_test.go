package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexvidalr/adscope/internal/adapters/httpapi"
	"github.com/alexvidalr/adscope/internal/adapters/storage"
	"github.com/alexvidalr/adscope/internal/application/merge"
	"github.com/alexvidalr/adscope/internal/application/report"
	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
)

type fakeProvider struct {
	channel string
	rows    []domain.Row
	err     error
}

func (f *fakeProvider) Channel() string { return f.channel }

func (f *fakeProvider) Accounts(ctx context.Context) ([]string, error) {
	return []string{"acc-1"}, nil
}

func (f *fakeProvider) Fetch(ctx context.Context, q ports.FetchQuery) ([]domain.Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func metaRow(campaign, ad string, spend, revenue float64) domain.Row {
	return domain.Row{
		Date: "2026-08-01", Channel: domain.ChannelMeta,
		Campaign: campaign, Product: domain.DeriveProduct(campaign), Ad: ad,
		Clicks: 100, Purchases: 4, AdSpend: spend, Revenue: revenue,
	}
}

func newTestServer(providers ...ports.ChannelProvider) (*httptest.Server, ports.Storage) {
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		panic(err)
	}
	defaults := domain.Thresholds{MinSpend: 50, MinClicks: 30, RoasKill: 1.0, RoasScale: 3.0}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := httpapi.NewServer(log, merge.New(providers, 2*time.Second), providers, store, defaults)
	return httptest.NewServer(s.Router()), store
}

func TestHealthEndpoints(t *testing.T) {
	server, store := newTestServer()
	defer server.Close()
	defer store.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestMergeReturnsRowsAsJSON(t *testing.T) {
	provider := &fakeProvider{
		channel: domain.ChannelMeta,
		rows:    []domain.Row{metaRow("TOF - A", "Hook", 100, 400)},
	}
	server, store := newTestServer(provider)
	defer server.Close()
	defer store.Close()

	resp, err := http.Get(server.URL + "/api/merge?level=ad&date_preset=last_7d")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var rows []domain.Row
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Hook", rows[0].Ad)
	assert.Equal(t, "TOF", rows[0].Product)
}

func TestMergeCSVFormat(t *testing.T) {
	provider := &fakeProvider{
		channel: domain.ChannelMeta,
		rows:    []domain.Row{metaRow("TOF - A", "Hook", 100.5, 400)},
	}
	server, store := newTestServer(provider)
	defer server.Close()
	defer store.Close()

	resp, err := http.Get(server.URL + "/api/merge?format=csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"date,channel,campaign,product,ad,impressions,clicks,leads,checkouts,purchases,ad_spend,revenue",
		lines[0])
	assert.Contains(t, lines[1], "100.50")
}

func TestMergeInvalidParamsReturn400(t *testing.T) {
	server, store := newTestServer()
	defer server.Close()
	defer store.Close()

	for _, path := range []string{
		"/api/merge?level=bogus",
		"/api/merge?date_preset=last_5m",
		"/api/merge?from=01-08-2026&to=2026-08-07",
	} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestChannelEndpointSurfacesAdapterError(t *testing.T) {
	provider := &fakeProvider{channel: domain.ChannelMeta, err: errors.New("token expired")}
	server, store := newTestServer(provider)
	defer server.Close()
	defer store.Close()

	resp, err := http.Get(server.URL + "/api/channels/meta")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "token expired")
}

func TestChannelEndpointUnknownChannel(t *testing.T) {
	server, store := newTestServer()
	defer server.Close()
	defer store.Close()

	resp, err := http.Get(server.URL + "/api/channels/youtube")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportClassifiesAndRanks(t *testing.T) {
	provider := &fakeProvider{
		channel: domain.ChannelMeta,
		rows: []domain.Row{
			metaRow("BOF - Retargeting", "Promo", 800, 200), // Kill
			metaRow("TOF - Prospecting", "Hook", 200, 1600), // Scale
		},
	}
	server, store := newTestServer(provider)
	defer server.Close()
	defer store.Close()

	resp, err := http.Get(server.URL + "/api/report?level=ad")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var r domain.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	require.Len(t, r.Summaries, 2)
	// Orden canónico: Scale primero
	assert.Equal(t, "Hook", r.Summaries[0].Entity)
	assert.Equal(t, "Promo", r.Summaries[1].Entity)
}

func TestReportThresholdOverrides(t *testing.T) {
	provider := &fakeProvider{
		channel: domain.ChannelMeta,
		rows:    []domain.Row{metaRow("TOF - A", "Hook", 200, 500)}, // ROAS 2.5
	}
	server, store := newTestServer(provider)
	defer server.Close()
	defer store.Close()

	// Con roas_scale=2 la entidad pasa de Optimize a Scale
	resp, err := http.Get(server.URL + "/api/report?roas_scale=2")
	require.NoError(t, err)
	defer resp.Body.Close()

	var r domain.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	require.Len(t, r.Summaries, 1)
	assert.Equal(t, domain.DecisionScale, r.Summaries[0].Decision)
}

func TestHistoryReturnsSavedSnapshots(t *testing.T) {
	server, store := newTestServer()
	defer server.Close()
	defer store.Close()

	th := domain.Thresholds{MinSpend: 50, MinClicks: 30, RoasKill: 1.0, RoasScale: 3.0}
	r := report.Build([]domain.Row{metaRow("TOF - A", "Hook", 100, 400)},
		domain.LevelAd, th, time.Now().UTC())
	require.NoError(t, store.SaveReport(context.Background(), r))

	resp, err := http.Get(server.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snaps []domain.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snaps))
	require.Len(t, snaps, 1)
	assert.Equal(t, 1, snaps[0].Rows)
}

func TestHistoryBadDateReturns400(t *testing.T) {
	server, store := newTestServer()
	defer server.Close()
	defer store.Close()

	resp, err := http.Get(server.URL + "/api/history?from=soon")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
