package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client fetches bitcoin spot prices from a blockchain.info compatible
// ticker endpoint. Purely informational; nothing in the wallet depends on
// the result.
type Client struct {
	apiBaseUrl string
	httpClient *http.Client
}

type tickerEntry struct {
	Last   float64 `json:"last"`
	Symbol string  `json:"symbol"`
}

func NewClient(apiBaseUrl string) (*Client, error) {
	if apiBaseUrl == "" {
		return nil, fmt.Errorf("apiBaseUrl not set")
	}

	if !strings.HasSuffix(apiBaseUrl, "/") {
		apiBaseUrl = apiBaseUrl + "/"
	}

	return &Client{
		apiBaseUrl: apiBaseUrl,
		httpClient: http.DefaultClient,
	}, nil
}

// Rate returns the last traded price of one bitcoin in the given currency,
// e.g. "USD".
func (c *Client) Rate(ctx context.Context, currency string) (float64, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET",
		c.apiBaseUrl+"ticker",
		nil,
	)
	if err != nil {
		return 0, fmt.Errorf("http.NewRequestWithContext error: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("httpClient.Do error: %w", err)
	}

	defer resp.Body.Close()
	if !(resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return 0, fmt.Errorf("error statuscode %v", resp.StatusCode)
	}

	var body map[string]tickerEntry
	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	entry, ok := body[strings.ToUpper(currency)]
	if !ok {
		return 0, fmt.Errorf("no rate for currency %v", currency)
	}

	return entry.Last, nil
}
