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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/distillate-labs/dieseldesk/internal/config"
	"github.com/distillate-labs/dieseldesk/internal/models"
)

// EIAArea ties an EIA duoarea code to the region code the desk uses. The
// descriptor is kept lowercase; presentation derives from it.
type EIAArea struct {
	Code       string
	Region     string
	Descriptor string
}

// EIAAreas lists the tracked distillate stock regions, national total first.
var EIAAreas = []EIAArea{
	{Code: "NUS", Region: "US", Descriptor: "national total"},
	{Code: "R10", Region: "PADD1", Descriptor: "east coast"},
	{Code: "R20", Region: "PADD2", Descriptor: "midwest"},
	{Code: "R30", Region: "PADD3", Descriptor: "gulf coast"},
	{Code: "R40", Region: "PADD4", Descriptor: "rocky mountain"},
	{Code: "R50", Region: "PADD5", Descriptor: "west coast"},
}

var titler = cases.Title(language.English)

// DisplayName renders the area descriptor for dashboards and logs.
func (a EIAArea) DisplayName() string {
	return titler.String(a.Descriptor)
}

// DisplayNameForRegion returns the dashboard label for a desk region code,
// falling back to the code itself for regions outside the catalog.
func DisplayNameForRegion(region string) string {
	for _, area := range EIAAreas {
		if area.Region == region {
			return area.DisplayName()
		}
	}
	return region
}

// RegionForArea returns the desk region code for an EIA duoarea code.
func RegionForArea(code string) (string, bool) {
	for _, area := range EIAAreas {
		if area.Code == code {
			return area.Region, true
		}
	}
	return "", false
}

// EIAClient fetches weekly distillate stocks from the EIA v2 API.
type EIAClient struct {
	HTTPClient *http.Client
	BaseURL    string
	apiKey     string
}

// NewEIAClient creates a client from configuration.
func NewEIAClient(cfg config.EIAConfig) *EIAClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &EIAClient{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

type eiaRow struct {
	Period  string      `json:"period"`
	Duoarea string      `json:"duoarea"`
	Value   json.Number `json:"value"`
	Units   string      `json:"units"`
}

type eiaDataResponse struct {
	Response struct {
		Data  []eiaRow    `json:"data"`
		Total json.Number `json:"total"`
	} `json:"response"`
}

// FetchDistillateStocks returns weekly distillate ending stocks for one
// area over a date range, most recent first. Values are thousand barrels.
func (c *EIAClient) FetchDistillateStocks(ctx context.Context, areaCode string, start, end time.Time) ([]models.Point, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no EIA API key configured")
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("frequency", "weekly")
	params.Add("data[]", "value")
	params.Add("facets[product][]", "EPD0")
	params.Add("facets[process][]", "SAE")
	params.Add("facets[duoarea][]", areaCode)
	params.Set("start", start.Format("2006-01-02"))
	params.Set("end", end.Format("2006-01-02"))
	params.Set("sort[0][column]", "period")
	params.Set("sort[0][direction]", "desc")
	params.Set("length", "5000")

	var response eiaDataResponse
	if err := c.makeRequest(ctx, "/petroleum/sum/sndw/data/?"+params.Encode(), &response); err != nil {
		return nil, err
	}

	points := make([]models.Point, 0, len(response.Response.Data))
	for _, row := range response.Response.Data {
		if row.Value == "" {
			continue
		}
		value, err := decimal.NewFromString(row.Value.String())
		if err != nil {
			continue
		}
		date, err := time.Parse("2006-01-02", row.Period)
		if err != nil {
			continue
		}
		points = append(points, models.Point{Date: date, Value: value})
	}
	return points, nil
}

func (c *EIAClient) makeRequest(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dieseldesk/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call EIA: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read EIA response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("EIA error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode EIA response: %w", err)
	}
	return nil
}
