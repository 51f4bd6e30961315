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

func newFREDClient(serverURL, apiKey string) *FREDClient {
	return NewFREDClient(config.FREDConfig{
		BaseURL: serverURL,
		APIKey:  apiKey,
		Timeout: 5,
	})
}

func TestFREDClient_FetchSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series/observations", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "DCOILBRENTEU", q.Get("series_id"))
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "json", q.Get("file_type"))
		assert.Equal(t, "desc", q.Get("sort_order"))
		assert.Equal(t, "2024-12-01", q.Get("observation_start"))
		assert.Equal(t, "2024-12-20", q.Get("observation_end"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"observations": [
				{"date": "2024-12-20", "value": "72.50"},
				{"date": "2024-12-19", "value": "."},
				{"date": "2024-12-18", "value": "71.80"}
			]
		}`))
	}))
	defer server.Close()

	client := newFREDClient(server.URL, "test-key")
	start := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)

	points, err := client.FetchSeries(context.Background(), "DCOILBRENTEU", start, end)
	require.NoError(t, err)

	// The "." placeholder day is dropped.
	require.Len(t, points, 2)
	assert.Equal(t, "72.5", points[0].Value.String())
	assert.Equal(t, "2024-12-20", points[0].Date.Format("2006-01-02"))
	assert.Equal(t, "71.8", points[1].Value.String())
}

func TestFREDClient_FetchSeriesNoAPIKey(t *testing.T) {
	client := newFREDClient("http://localhost:1", "")

	_, err := client.FetchSeries(context.Background(), "DCOILWTICO", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestFREDClient_FetchSeriesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_message": "Bad Request"}`))
	}))
	defer server.Close()

	client := newFREDClient(server.URL, "test-key")

	_, err := client.FetchSeries(context.Background(), "DCOILBRENTEU", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestFREDClient_FetchSeriesSkipsMalformedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"observations": [
				{"date": "2024-12-20", "value": "not-a-number"},
				{"date": "bad-date", "value": "70.00"},
				{"date": "2024-12-18", "value": "71.80"}
			]
		}`))
	}))
	defer server.Close()

	client := newFREDClient(server.URL, "test-key")

	points, err := client.FetchSeries(context.Background(), "DDFUELUSGULF", time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "71.8", points[0].Value.String())
}

func TestFREDSeries_CoversTrackedSeries(t *testing.T) {
	for _, seriesID := range []string{"DCOILBRENTEU", "DCOILWTICO", "DDFUELUSGULF", "DDFUELNYH"} {
		info, ok := FREDSeries[seriesID]
		require.True(t, ok, seriesID)
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.Unit)
	}
}
