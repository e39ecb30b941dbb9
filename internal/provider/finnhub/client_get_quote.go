package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Quote is the /quote payload. Finnhub answers unknown tickers with
// zeros rather than an error, so callers must check the price.
type Quote struct {
	Current       *float64 `json:"c"`
	Change        *float64 `json:"d"`
	ChangePercent *float64 `json:"dp"`
	High          *float64 `json:"h"`
	Low           *float64 `json:"l"`
	Open          *float64 `json:"o"`
	PreviousClose *float64 `json:"pc"`
	Timestamp     int64    `json:"t"`

	// Error is set on 200 responses the plan does not cover.
	Error string `json:"error,omitempty"`
}

// Time returns the quote timestamp, or the zero time when absent.
func (q Quote) Time() time.Time {
	if q.Timestamp <= 0 {
		return time.Time{}
	}
	return time.Unix(q.Timestamp, 0).UTC()
}

// GetQuote retrieves the real-time quote of a symbol.
func (c *FinnhubAPIClient) GetQuote(ctx context.Context, symbol string, opts ...FinnhubAPIClientOption) (*Quote, error) {
	if symbol == "" {
		return nil, errors.New("empty symbol")
	}
	cl := c.with(opts)

	u := cl.baseURL + "/quote?" + url.Values{"symbol": {symbol}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = cl.requestHeader()

	res, err := cl.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("unexpected status code: %d: %s", res.StatusCode, string(b))
	}

	var quote Quote
	if err := json.NewDecoder(res.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("decoding quote response: %w", err)
	}
	if quote.Error != "" {
		return nil, fmt.Errorf("finnhub: %s", quote.Error)
	}
	return &quote, nil
}
