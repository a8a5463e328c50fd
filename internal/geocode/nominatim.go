package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// Place is one raw search result from the place-search upstream.
// Lat and Lon stay strings so derived URLs match the upstream values verbatim.
type Place struct {
	PlaceID     int64             `json:"place_id"`
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Address     map[string]string `json:"address"`
	ExtraTags   map[string]string `json:"extratags"`
	NameDetails map[string]string `json:"namedetails"`
}

// Client queries the Nominatim search endpoint. All calls pass through a
// politeness throttle; the upstream usage policy caps anonymous clients at
// one request per second.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
}

// NewClient constructs a Client. ratePerSecond <= 0 falls back to 1 rps.
func NewClient(baseURL, userAgent string, timeout time.Duration, ratePerSecond float64) *Client {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// Search issues a free-text place search. limit <= 0 leaves the result count
// to the upstream default.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("extratags", "1")
	params.Set("namedetails", "1")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var places []Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	return places, nil
}
