package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/itchyny/gojq"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ynabimport/internal/log"
)

// Client fetches exchange rates over HTTP and extracts them from the JSON
// response with a jq expression.
type Client struct {
	httpClient *http.Client
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a rate client. apiKey is sent as the apiKey query
// parameter when non-empty.
func NewClient(httpClient *http.Client, apiKey string, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// FetchRate returns the single number selected by query from the document at
// rawURL, e.g. ".EUR_HUF" for {"EUR_HUF": 359.5}.
func (c *Client) FetchRate(ctx context.Context, rawURL, query string) (decimal.Decimal, error) {
	doc, err := c.getJSON(ctx, rawURL)
	if err != nil {
		return decimal.Zero, ExchangeRateFetchError{URL: rawURL, Err: err}
	}

	v, err := runQuery(query, doc)
	if err != nil {
		return decimal.Zero, ExchangeRateFetchError{URL: rawURL, Err: err}
	}

	rate, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, ExchangeRateFetchError{URL: rawURL, Err: err}
	}

	c.logger.Debug("fetched exchange rate", "url", rawURL, "rate", rate)
	return rate, nil
}

// FetchHistory returns the date-keyed rate table selected by query from the
// document at rawURL. The query must produce an object of
// {"YYYY-MM-DD": rate}.
func (c *Client) FetchHistory(ctx context.Context, rawURL, query string) (map[string]decimal.Decimal, error) {
	doc, err := c.getJSON(ctx, rawURL)
	if err != nil {
		return nil, ExchangeRateFetchError{URL: rawURL, Err: err}
	}

	v, err := runQuery(query, doc)
	if err != nil {
		return nil, ExchangeRateFetchError{URL: rawURL, Err: err}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ExchangeRateFetchError{URL: rawURL, Err: fmt.Errorf("query %q returned %T, want object", query, v)}
	}

	table := make(map[string]decimal.Decimal, len(obj))
	for day, raw := range obj {
		if _, err := time.Parse(DateFormat, day); err != nil {
			return nil, ExchangeRateFetchError{URL: rawURL, Err: fmt.Errorf("bad date key %q: %w", day, err)}
		}
		rate, err := toDecimal(raw)
		if err != nil {
			return nil, ExchangeRateFetchError{URL: rawURL, Err: fmt.Errorf("rate for %s: %w", day, err)}
		}
		table[day] = rate
	}

	c.logger.Debug("fetched exchange rate history", "url", rawURL, "days", len(table))
	return table, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string) (any, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if c.apiKey != "" {
		q := u.Query()
		q.Set("apiKey", c.apiKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Trace(c.logger, "rate API response", "url", rawURL, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return doc, nil
}

func runQuery(query string, input any) (any, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("parsing jq query %q: %w", query, err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("compiling jq query %q: %w", query, err)
	}

	iter := code.Run(input)
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("jq query %q produced no result", query)
	}
	if err, isErr := v.(error); isErr {
		return nil, fmt.Errorf("jq query %q: %w", query, err)
	}
	if v == nil {
		return nil, fmt.Errorf("jq query %q produced null", query)
	}
	return v, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing rate %q: %w", n, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("rate has type %T, want number", v)
	}
}
