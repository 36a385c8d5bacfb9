package frankfurter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second)
}

func TestCurrencies(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/currencies", r.URL.Path)
		_, _ = w.Write([]byte(`{"EUR":"Euro","USD":"United States Dollar"}`))
	})

	got, err := client.Currencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"EUR": "Euro", "USD": "United States Dollar"}, got)
}

func TestLatestRequestShape(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "100", q.Get("amount"))
		assert.Equal(t, "EUR", q.Get("from"))
		assert.Equal(t, "USD,GBP", q.Get("to"))
		_, _ = w.Write([]byte(`{"amount":100,"base":"EUR","date":"2024-01-03","rates":{"USD":108,"GBP":86}}`))
	})

	quote, err := client.Latest(context.Background(), 100, "EUR", []string{"USD", "GBP"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", quote.Base)
	assert.Equal(t, "2024-01-03", quote.Date)
	assert.Equal(t, 108.0, quote.Rates["USD"])
	assert.Equal(t, 86.0, quote.Rates["GBP"])
}

func TestLatestOmitsEmptyParameters(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("amount"))
		assert.False(t, q.Has("to"))
		assert.Equal(t, "USD", q.Get("from"))
		_, _ = w.Write([]byte(`{"amount":1,"base":"USD","date":"2024-01-03","rates":{"EUR":0.92}}`))
	})

	_, err := client.Latest(context.Background(), 0, "USD", nil)
	require.NoError(t, err)
}

func TestRange(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024-01-01..2024-01-03", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("from"))
		assert.Equal(t, "USD", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"amount":1,"base":"EUR","start_date":"2024-01-01","end_date":"2024-01-03",
			"rates":{"2024-01-01":{"USD":1.10},"2024-01-02":{"USD":1.12},"2024-01-03":{"USD":1.08}}}`))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	rates, err := client.Range(context.Background(), start, end, "EUR", "USD")
	require.NoError(t, err)
	assert.Len(t, rates, 3)
	assert.Equal(t, 1.12, rates["2024-01-02"]["USD"])
}

func TestOnDate(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2023-06-15", r.URL.Path)
		_, _ = w.Write([]byte(`{"amount":1,"base":"EUR","date":"2023-06-15","rates":{"USD":1.09}}`))
	})

	quote, err := client.OnDate(context.Background(), time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), "EUR", []string{"USD"})
	require.NoError(t, err)
	assert.Equal(t, 1.09, quote.Rates["USD"])
}

func TestNonSuccessStatusIsTransportError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	})

	_, err := client.Latest(context.Background(), 1, "XXX", []string{"USD"})
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "latest", terr.Op)
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)
	assert.Contains(t, terr.Error(), "404")
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Currencies(context.Background())
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Zero(t, terr.StatusCode)
	assert.NotNil(t, terr.Unwrap())
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":`))
	})

	_, err := client.Currencies(context.Background())
	var terr *TransportError
	assert.True(t, errors.As(err, &terr))
}

func TestNewDefaults(t *testing.T) {
	c := New("", 0)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
