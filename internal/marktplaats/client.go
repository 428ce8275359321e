package marktplaats

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

const (
	defaultBaseURL = "https://www.marktplaats.nl"
	searchPath     = "/lrp/api/search"
	httpTimeout    = 15 * time.Second

	// ListingBaseURL prefixes the relative vipUrl of a listing.
	ListingBaseURL = "https://www.marktplaats.nl"
)

// Client queries the Marktplaats search endpoint. The endpoint rejects
// unadorned automated clients, so every request carries a browser-shaped
// header set. Pure request/response, no state.
type Client struct {
	// BaseURL is overridable for tests; defaults to the production host.
	BaseURL string

	client *http.Client
	log    zerolog.Logger
}

// NewClient constructs a Client with a shared HTTP client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
		log:     log.With().Str("component", "marktplaats").Logger(),
	}
}

// Search runs the translated query and parses the result set. Any failure
// (transport, non-2xx status, malformed body) is logged and reported as a
// nil response — the caller never sees an error, and no retry is attempted.
func (c *Client) Search(ctx context.Context, filters []model.JobFilter) *model.SearchResponse {
	reqURL := c.BaseURL + searchPath + "?" + BuildQuery(filters)
	c.log.Debug().Str("url", reqURL).Msg("calling search API")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.log.Error().Err(err).Msg("build search request")
		return nil
	}
	setBrowserHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error().Err(err).Msg("search request failed")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error().Err(err).Msg("read search response")
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error().Int("status", resp.StatusCode).
			Msgf("search returned non-success status: %.200s", string(body))
		return nil
	}

	var result model.SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.log.Error().Err(err).Msg("unmarshal search response")
		return nil
	}

	c.log.Info().Int("count", len(result.Listings)).Msg("retrieved listings")
	return &result
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://www.marktplaats.nl/l/auto-s/")
	req.Header.Set("sec-ch-ua", `"Chromium";v="140", "Not=A?Brand";v="24", "Google Chrome";v="140"`)
	req.Header.Set("sec-ch-ua-mobile", "?0")
	req.Header.Set("sec-ch-ua-platform", `"macOS"`)
	req.Header.Set("sec-fetch-dest", "empty")
	req.Header.Set("sec-fetch-mode", "cors")
	req.Header.Set("sec-fetch-site", "same-origin")
}
