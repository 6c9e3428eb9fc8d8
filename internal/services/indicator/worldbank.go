package indicator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"consortial/internal/models"
)

// DefaultWorldBankURL is the public World Bank API v2 endpoint.
const DefaultWorldBankURL = "https://api.worldbank.org/v2"

const worldBankPageSize = 500

// WorldBankClient downloads indicator data from the World Bank API.
type WorldBankClient struct {
	Client  *http.Client
	BaseURL string
}

func NewWorldBankClient(baseURL string) *WorldBankClient {
	if baseURL == "" {
		baseURL = DefaultWorldBankURL
	}
	return &WorldBankClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: baseURL,
	}
}

// worldBankPage is the metadata element of a World Bank response.
type worldBankPage struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type worldBankEntry struct {
	CountryISO3Code string   `json:"countryiso3code"`
	Value           *float64 `json:"value"`
}

// Fetch returns one year of the indicator for every country and region,
// keyed by ISO alpha-3 code. Entries without a value or code are dropped.
func (c *WorldBankClient) Fetch(ctx context.Context, indicator string, year int) (models.IndicatorValues, error) {
	values := models.IndicatorValues{}
	for page := 1; ; page++ {
		meta, entries, err := c.fetchPage(ctx, indicator, year, page)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.CountryISO3Code == "" || e.Value == nil {
				continue
			}
			values[e.CountryISO3Code] = *e.Value
		}
		if meta.Pages <= page {
			break
		}
	}
	return values, nil
}

func (c *WorldBankClient) fetchPage(ctx context.Context, indicator string, year, page int) (worldBankPage, []worldBankEntry, error) {
	var meta worldBankPage

	q := url.Values{}
	q.Set("date", fmt.Sprint(year))
	q.Set("format", "json")
	q.Set("per_page", fmt.Sprint(worldBankPageSize))
	q.Set("page", fmt.Sprint(page))
	u := fmt.Sprintf("%s/country/all/indicator/%s?%s", c.BaseURL, url.PathEscape(indicator), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return meta, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return meta, nil, fmt.Errorf("world bank fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return meta, nil, fmt.Errorf("world bank read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return meta, nil, fmt.Errorf("world bank: status %d, body: %s", resp.StatusCode, string(body))
	}

	// The payload is [meta, entries]; error responses carry only a message element.
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return meta, nil, fmt.Errorf("world bank decode: %w", err)
	}
	if len(parts) < 2 {
		return meta, nil, fmt.Errorf("world bank: unexpected response for %s %d: %s", indicator, year, string(body))
	}
	if err := json.Unmarshal(parts[0], &meta); err != nil {
		return meta, nil, fmt.Errorf("world bank decode meta: %w", err)
	}
	var entries []worldBankEntry
	if err := json.Unmarshal(parts[1], &entries); err != nil {
		return meta, nil, fmt.Errorf("world bank decode entries: %w", err)
	}
	return meta, entries, nil
}
