// Package frankfurter is a client for the Frankfurter exchange rate API.
package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/fxdash/internal/model"
)

const (
	DefaultBaseURL = "https://api.frankfurter.app"
	DefaultTimeout = 10 * time.Second
)

// Quote is a rate snapshot as returned by /latest and /{date}.
// Rates holds converted amounts when an amount was requested.
type Quote struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// TransportError reports a network failure or a non-success response.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: provider returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client talks to a Frankfurter-compatible endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. Empty baseURL and non-positive timeout fall back to defaults.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Currencies returns the code to display name mapping.
func (c *Client) Currencies(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	if err := c.get(ctx, "currencies", "/currencies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Latest fetches the latest rates from base. With amount > 0 the rates are converted amounts.
// An empty to list asks for every currency.
func (c *Client) Latest(ctx context.Context, amount float64, from string, to []string) (Quote, error) {
	var q Quote
	err := c.get(ctx, "latest", "/latest", quoteQuery(amount, from, to), &q)
	return q, err
}

// OnDate fetches the rates published for a single date.
func (c *Client) OnDate(ctx context.Context, date time.Time, from string, to []string) (Quote, error) {
	var q Quote
	err := c.get(ctx, "rates on date", "/"+date.Format(model.DateLayout), quoteQuery(0, from, to), &q)
	return q, err
}

// Range fetches the daily rate series between two dates, keyed by YYYY-MM-DD.
func (c *Client) Range(ctx context.Context, start, end time.Time, from, to string) (map[string]map[string]float64, error) {
	var body struct {
		Rates map[string]map[string]float64 `json:"rates"`
	}
	path := "/" + start.Format(model.DateLayout) + ".." + end.Format(model.DateLayout)
	if err := c.get(ctx, "rate series", path, quoteQuery(0, from, []string{to}), &body); err != nil {
		return nil, err
	}
	return body.Rates, nil
}

func quoteQuery(amount float64, from string, to []string) url.Values {
	q := url.Values{}
	if amount > 0 {
		q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	}
	if from != "" {
		q.Set("from", from)
	}
	if len(to) > 0 {
		q.Set("to", strings.Join(to, ","))
	}
	return q
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
