package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/distillate-labs/dieseldesk/internal/config"
	"github.com/distillate-labs/dieseldesk/internal/models"
)

// SeriesInfo describes one upstream price series.
type SeriesInfo struct {
	Name string
	Unit string
}

// FREDSeries maps the price series the desk tracks to their quoting units.
var FREDSeries = map[string]SeriesInfo{
	models.SeriesBrent:        {Name: "Brent Crude", Unit: "$/bbl"},
	models.SeriesWTI:          {Name: "WTI Crude", Unit: "$/bbl"},
	models.SeriesULSDGulf:     {Name: "ULSD Gulf Coast", Unit: "$/gal"},
	models.SeriesULSDNYHarbor: {Name: "ULSD NY Harbor", Unit: "$/gal"},
}

// FREDClient fetches price observations from the Federal Reserve Economic
// Data API.
type FREDClient struct {
	HTTPClient *http.Client
	BaseURL    string
	apiKey     string
}

// NewFREDClient creates a client from configuration.
func NewFREDClient(cfg config.FREDConfig) *FREDClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &FREDClient{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredObservationsResponse struct {
	Observations []fredObservation `json:"observations"`
}

// FetchSeries returns the observations of one series over a date range,
// most recent first. FRED marks missing values with "."; those days are
// dropped at this boundary so nothing downstream ever sees them.
func (c *FREDClient) FetchSeries(ctx context.Context, seriesID string, start, end time.Time) ([]models.Point, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no FRED API key configured")
	}

	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("observation_start", start.Format("2006-01-02"))
	params.Set("observation_end", end.Format("2006-01-02"))
	params.Set("sort_order", "desc")
	params.Set("limit", "1000")

	var response fredObservationsResponse
	if err := c.makeRequest(ctx, "/series/observations?"+params.Encode(), &response); err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, len(response.Observations))
	for _, obs := range response.Observations {
		if obs.Value == "" || obs.Value == "." {
			continue
		}
		value, err := decimal.NewFromString(obs.Value)
		if err != nil {
			continue
		}
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			continue
		}
		points = append(points, models.Point{Date: date, Value: value})
	}
	return points, nil
}

func (c *FREDClient) makeRequest(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dieseldesk/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call FRED: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read FRED response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("FRED error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode FRED response: %w", err)
	}
	return nil
}
