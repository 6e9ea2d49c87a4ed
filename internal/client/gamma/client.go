package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://gamma-api.polymarket.com"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// EventsQuery selects active events ordered by a Gamma sort field.
type EventsQuery struct {
	Active    *bool
	Closed    *bool
	Limit     int
	Order     string
	Ascending bool
	Title     string
}

func (c *Client) ListEvents(ctx context.Context, q EventsQuery) ([]RawEvent, error) {
	query := url.Values{}
	if q.Active != nil {
		query.Set("active", strconv.FormatBool(*q.Active))
	}
	if q.Closed != nil {
		query.Set("closed", strconv.FormatBool(*q.Closed))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Order != "" {
		query.Set("order", q.Order)
	}
	query.Set("ascending", strconv.FormatBool(q.Ascending))
	if strings.TrimSpace(q.Title) != "" {
		query.Set("title", strings.TrimSpace(q.Title))
	}

	body, err := c.doRequest(ctx, "/events", query)
	if err != nil {
		return nil, err
	}
	var events []RawEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// GetMarket fetches one market by condition ID. A market that Gamma does not
// know is returned as nil, not an error.
func (c *Client) GetMarket(ctx context.Context, conditionID string) (*RawMarket, error) {
	if strings.TrimSpace(conditionID) == "" {
		return nil, fmt.Errorf("condition_id is required")
	}
	query := url.Values{}
	query.Set("condition_id", conditionID)

	body, err := c.doRequest(ctx, "/markets", query)
	if err != nil {
		return nil, err
	}
	var markets []RawMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("failed to decode markets: %w", err)
	}
	if len(markets) == 0 {
		return nil, nil
	}
	return &markets[0], nil
}
