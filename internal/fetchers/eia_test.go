package fetchers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distillate-labs/dieseldesk/internal/config"
)

func newEIAClient(serverURL, apiKey string) *EIAClient {
	return NewEIAClient(config.EIAConfig{
		BaseURL: serverURL,
		APIKey:  apiKey,
		Timeout: 5,
	})
}

func TestEIAClient_FetchDistillateStocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/petroleum/sum/sndw/data/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "weekly", q.Get("frequency"))
		assert.Equal(t, "EPD0", q.Get("facets[product][]"))
		assert.Equal(t, "SAE", q.Get("facets[process][]"))
		assert.Equal(t, "R30", q.Get("facets[duoarea][]"))
		assert.Equal(t, "desc", q.Get("sort[0][direction]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response": {
				"total": "2",
				"data": [
					{"period": "2024-12-20", "duoarea": "R30", "value": 38500, "units": "MBBL"},
					{"period": "2024-12-13", "duoarea": "R30", "value": 38120.5, "units": "MBBL"}
				]
			}
		}`))
	}))
	defer server.Close()

	client := newEIAClient(server.URL, "test-key")
	start := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)

	points, err := client.FetchDistillateStocks(context.Background(), "R30", start, end)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, "38500", points[0].Value.String())
	assert.Equal(t, "2024-12-20", points[0].Date.Format("2006-01-02"))
	assert.Equal(t, "38120.5", points[1].Value.String())
}

func TestEIAClient_FetchDistillateStocksNoAPIKey(t *testing.T) {
	client := newEIAClient("http://localhost:1", "")

	_, err := client.FetchDistillateStocks(context.Background(), "NUS", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestEIAClient_FetchDistillateStocksUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	client := newEIAClient(server.URL, "test-key")

	_, err := client.FetchDistillateStocks(context.Background(), "NUS", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestRegionForArea(t *testing.T) {
	region, ok := RegionForArea("NUS")
	require.True(t, ok)
	assert.Equal(t, "US", region)

	region, ok = RegionForArea("R50")
	require.True(t, ok)
	assert.Equal(t, "PADD5", region)

	_, ok = RegionForArea("R99")
	assert.False(t, ok)
}

func TestEIAAreas_NationalFirst(t *testing.T) {
	require.NotEmpty(t, EIAAreas)
	assert.Equal(t, "US", EIAAreas[0].Region)
	assert.Len(t, EIAAreas, 6)
}

func TestEIAArea_DisplayName(t *testing.T) {
	names := make(map[string]string, len(EIAAreas))
	for _, area := range EIAAreas {
		names[area.Region] = area.DisplayName()
	}

	assert.Equal(t, "National Total", names["US"])
	assert.Equal(t, "East Coast", names["PADD1"])
	assert.Equal(t, "Gulf Coast", names["PADD3"])
	assert.Equal(t, "Rocky Mountain", names["PADD4"])
}

func TestDisplayNameForRegion(t *testing.T) {
	assert.Equal(t, "Midwest", DisplayNameForRegion("PADD2"))
	assert.Equal(t, "West Coast", DisplayNameForRegion("PADD5"))
	// Unknown regions fall back to the code.
	assert.Equal(t, "PADD9", DisplayNameForRegion("PADD9"))
}
