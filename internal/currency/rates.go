package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultRatesURL is the public Frankfurter endpoint (ECB reference rates).
const DefaultRatesURL = "https://api.frankfurter.app"

var (
	// ErrRateMissing is returned when the response has no rate for the
	// requested target currency.
	ErrRateMissing = errors.New("rate missing from response")

	// ErrUnknownSymbol is returned when a currency symbol has no ISO code.
	ErrUnknownSymbol = errors.New("unknown currency symbol")
)

// RateSource returns the conversion rate from one currency to another on a
// given day.
type RateSource interface {
	Rate(ctx context.Context, day time.Time, from, to string) (float64, error)
}

// FrankfurterClient queries a Frankfurter-compatible rates API.
//
// REQUEST:
//   GET {BaseURL}/2025-03-05?from=USD&to=EUR
//
// RESPONSE:
//   {"amount":1.0,"base":"USD","date":"2025-03-05","rates":{"EUR":0.9263}}
type FrankfurterClient struct {
	// BaseURL is the API root, without trailing slash.
	BaseURL string

	// HTTPClient performs the request. Requests are never retried.
	HTTPClient *http.Client
}

// NewFrankfurterClient creates a client. An empty baseURL selects the public
// endpoint; a zero timeout keeps the transport default.
func NewFrankfurterClient(baseURL string, timeout time.Duration) *FrankfurterClient {
	if baseURL == "" {
		baseURL = DefaultRatesURL
	}
	return &FrankfurterClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Rate implements RateSource.
func (c *FrankfurterClient) Rate(ctx context.Context, day time.Time, from, to string) (float64, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	endpoint := fmt.Sprintf("%s/%s?%s", c.BaseURL, day.Format("2006-01-02"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("building rate request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("requesting rate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading rate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload ratesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decoding rate response: %w", err)
	}

	rate, ok := payload.Rates[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrRateMissing, strings.TrimSpace(string(body)))
	}

	return rate, nil
}
