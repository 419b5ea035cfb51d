// Package pricefeed reads the latest prices from the Pyth Hermes API.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// UpstreamError is returned when Hermes answers with a non-2xx status.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("hermes: status %d, body: %s", e.Status, e.Body)
}

type Client struct {
	BaseURL string
	FeedIDs []string
	http    *http.Client
}

func New(baseURL string, feedIDs []string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		FeedIDs: feedIDs,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) latestURL() string {
	q := url.Values{}
	for _, id := range c.FeedIDs {
		q.Add("ids[]", id)
	}
	return c.BaseURL + "/api/latest_price_feeds?" + q.Encode()
}

// Latest returns the raw Hermes response body for the configured feeds.
func (c *Client) Latest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.latestURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hermes fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("hermes read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("hermes: response is not json")
	}
	return body, nil
}

// hermesFeed mirrors one element of latest_price_feeds. Prices are integer
// strings scaled by 10^expo.
type hermesFeed struct {
	ID    string `json:"id"`
	Price struct {
		Price       string `json:"price"`
		Conf        string `json:"conf"`
		Expo        int    `json:"expo"`
		PublishTime int64  `json:"publish_time"`
	} `json:"price"`
}

type Quote struct {
	ID          string    `json:"id"`
	Price       int64     `json:"price"`
	Conf        uint64    `json:"conf"`
	Expo        int       `json:"expo"`
	PublishTime time.Time `json:"publish_time"`
}

// Value is the human-readable price.
func (q Quote) Value() float64 {
	return float64(q.Price) * math.Pow10(q.Expo)
}

// Confidence is the confidence interval in the same units as Value.
func (q Quote) Confidence() float64 {
	return float64(q.Conf) * math.Pow10(q.Expo)
}

// Quotes fetches and decodes the configured feeds.
func (c *Client) Quotes(ctx context.Context) ([]Quote, error) {
	body, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return ParseQuotes(body)
}

func ParseQuotes(body []byte) ([]Quote, error) {
	var feeds []hermesFeed
	if err := json.Unmarshal(body, &feeds); err != nil {
		return nil, fmt.Errorf("hermes decode: %w", err)
	}
	quotes := make([]Quote, 0, len(feeds))
	for _, f := range feeds {
		price, err := strconv.ParseInt(f.Price.Price, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("feed %s price %q: %w", f.ID, f.Price.Price, err)
		}
		conf, err := strconv.ParseUint(f.Price.Conf, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("feed %s conf %q: %w", f.ID, f.Price.Conf, err)
		}
		quotes = append(quotes, Quote{
			ID:          f.ID,
			Price:       price,
			Conf:        conf,
			Expo:        f.Price.Expo,
			PublishTime: time.Unix(f.Price.PublishTime, 0).UTC(),
		})
	}
	return quotes, nil
}
