package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const commonsFilePath = "https://commons.wikimedia.org/wiki/Special:FilePath/%s?width=500"

// Client talks to the Wikidata entity-data endpoint and the Wikipedia REST
// and action APIs. Lookups return empty strings for absent values; errors are
// reserved for transport and decode failures so callers can treat both as a
// miss in a fallback chain.
type Client struct {
	httpClient   *http.Client
	wikipediaURL string
	wikidataURL  string
	userAgent    string
}

// NewClient constructs a Client.
func NewClient(wikipediaURL, wikidataURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		wikipediaURL: wikipediaURL,
		wikidataURL:  wikidataURL,
		userAgent:    userAgent,
	}
}

type entityDataResponse struct {
	Entities map[string]struct {
		Claims map[string][]struct {
			MainSnak struct {
				DataValue struct {
					Value string `json:"value"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
		} `json:"claims"`
	} `json:"entities"`
}

// EntityImage resolves a Wikidata entity's image claim (P18) to a stable
// Commons file URL.
func (c *Client) EntityImage(ctx context.Context, entityID string) (string, error) {
	var data entityDataResponse
	endpoint := fmt.Sprintf("%s/wiki/Special:EntityData/%s.json", c.wikidataURL, url.PathEscape(entityID))
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return "", err
	}
	entity, ok := data.Entities[entityID]
	if !ok {
		return "", nil
	}
	images := entity.Claims["P18"]
	if len(images) == 0 || images[0].MainSnak.DataValue.Value == "" {
		return "", nil
	}
	file := strings.ReplaceAll(images[0].MainSnak.DataValue.Value, " ", "_")
	return fmt.Sprintf(commonsFilePath, url.PathEscape(file)), nil
}

type summaryResponse struct {
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// PageThumbnail fetches the summary of a Wikipedia page and returns its
// thumbnail URL, if the page has one.
func (c *Client) PageThumbnail(ctx context.Context, lang, title string) (string, error) {
	escaped := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	endpoint := fmt.Sprintf("%s/api/rest_v1/page/summary/%s", c.langBase(lang), escaped)
	var data summaryResponse
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return "", err
	}
	return data.Thumbnail.Source, nil
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// SearchTitle runs a full-text search and returns the top hit's title.
func (c *Client) SearchTitle(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("format", "json")
	params.Set("srlimit", "1")
	params.Set("srsearch", query)

	var data searchResponse
	if err := c.getJSON(ctx, c.wikipediaURL+"/w/api.php?"+params.Encode(), &data); err != nil {
		return "", err
	}
	if len(data.Query.Search) == 0 {
		return "", nil
	}
	return data.Query.Search[0].Title, nil
}

// langBase rewrites the configured Wikipedia host for another language
// edition. Hosts that do not follow the <lang>.wikipedia pattern (test
// servers, mirrors) are used as-is.
func (c *Client) langBase(lang string) string {
	if lang == "" || lang == "en" {
		return c.wikipediaURL
	}
	parsed, err := url.Parse(c.wikipediaURL)
	if err != nil {
		return c.wikipediaURL
	}
	host, rest, found := strings.Cut(parsed.Host, ".")
	if !found || host != "en" {
		return c.wikipediaURL
	}
	parsed.Host = lang + "." + rest
	return parsed.String()
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wiki endpoint returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wiki response: %w", err)
	}
	return nil
}
