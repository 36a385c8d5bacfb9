package app

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/fxdash/internal/frankfurter"
	"github.com/verte-zerg/fxdash/internal/ledger"
)

type memStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type fixture struct {
	app      *App
	storage  *memStorage
	requests atomic.Int32
}

func newFixture(t *testing.T, routes map[string]string) *fixture {
	t.Helper()
	f := &fixture{storage: &memStorage{values: map[string]string{}}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	f.app = New(frankfurter.New(srv.URL, 5*time.Second), f.storage)
	require.NoError(t, f.app.Load(context.Background()))
	return f
}

func TestConvertRecordsHistory(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/latest": `{"amount":100,"base":"EUR","date":"2024-01-03","rates":{"USD":108}}`,
	})

	conv, err := f.app.Convert(context.Background(), ConversionRequest{Amount: 100, From: "EUR", To: "USD"})
	require.NoError(t, err)
	assert.Equal(t, 108.0, conv.Result)
	assert.InDelta(t, 1.08, conv.Rate, 1e-9)
	assert.Equal(t, "2024-01-03", conv.Date)

	hist := f.app.History()
	require.Len(t, hist, 1)
	assert.Equal(t, "EUR", hist[0].From)
	assert.Equal(t, "USD", hist[0].To)
	assert.Equal(t, 108.0, hist[0].Result)
	assert.Contains(t, f.storage.values[ledger.HistoryKey], `"from":"EUR"`)
}

func TestConvertValidationSkipsNetwork(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, amount := range []float64{0, -5, math.Inf(1), math.NaN()} {
		_, err := f.app.Convert(ctx, ConversionRequest{Amount: amount, From: "EUR", To: "USD"})
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Please enter a valid amount greater than 0", err.Error())
	}

	_, err := f.app.Convert(ctx, ConversionRequest{Amount: 1, From: "", To: "USD"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.app.ConvertMulti(ctx, MultiConversionRequest{Amount: 1, From: "EUR"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Please select at least one target currency", err.Error())

	assert.Zero(t, f.requests.Load())
	assert.Empty(t, f.app.History())
}

func TestConvertTransportErrorLeavesHistory(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.app.Convert(context.Background(), ConversionRequest{Amount: 10, From: "EUR", To: "USD"})
	var terr *frankfurter.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Empty(t, f.app.History())
	_, ok := f.storage.values[ledger.HistoryKey]
	assert.False(t, ok)
}

func TestConvertMissingTargetIsRateUnavailable(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/latest": `{"amount":1,"base":"EUR","date":"2024-01-03","rates":{}}`,
	})

	_, err := f.app.Convert(context.Background(), ConversionRequest{Amount: 1, From: "EUR", To: "XYZ"})
	require.ErrorIs(t, err, ErrRateUnavailable)
	assert.Empty(t, f.app.History())
}

func TestConvertMulti(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/latest": `{"amount":10,"base":"EUR","date":"2024-01-03","rates":{"USD":10.8,"GBP":8.6}}`,
	})

	convs, err := f.app.ConvertMulti(context.Background(), MultiConversionRequest{Amount: 10, From: "EUR", To: []string{"USD", "GBP"}})
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "GBP", convs[0].To)
	assert.InDelta(t, 0.86, convs[0].Rate, 1e-9)
	assert.Equal(t, "USD", convs[1].To)
	assert.Len(t, f.app.History(), 2)
}

func TestTrend(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/2024-01-01..2024-01-03": `{"rates":{"2024-01-03":{"USD":1.08},"2024-01-01":{"USD":1.10},"2024-01-02":{"USD":1.12}}}`,
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	trend, err := f.app.Trend(context.Background(), TrendRequest{From: "EUR", To: "USD", Start: start, End: end})
	require.NoError(t, err)
	require.Len(t, trend.Changes, 3)
	assert.Equal(t, 1.12, trend.Summary.Highest.Rate)
	assert.Equal(t, 1.08, trend.Summary.Lowest.Rate)
	require.NotNil(t, trend.Summary.MaxFluctuation)
	assert.True(t, trend.Summary.MaxFluctuation.Point.Date.Equal(end))
}

func TestTrendValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	_, err := f.app.Trend(ctx, TrendRequest{From: "EUR", To: "USD", Start: start})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Please select start and end dates", err.Error())

	_, err = f.app.Trend(ctx, TrendRequest{From: "EUR", To: "USD", Start: start, End: start.AddDate(0, 0, -1)})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Start date cannot be after end date", err.Error())

	assert.Zero(t, f.requests.Load())
}

func TestLastDays(t *testing.T) {
	f := newFixture(t, nil)
	f.app.now = func() time.Time { return time.Date(2024, 3, 31, 22, 15, 0, 0, time.UTC) }

	start, end := f.app.LastDays(30)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestCompareDate(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/2023-06-15": `{"amount":1,"base":"EUR","date":"2023-06-15","rates":{"USD":1.00}}`,
		"/latest":     `{"amount":1,"base":"EUR","date":"2024-01-03","rates":{"USD":1.10}}`,
	})

	cmp, err := f.app.CompareDate(context.Background(), CompareRequest{From: "EUR", To: "USD", Date: time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, cmp.DifferencePct, 1e-9)
	assert.Equal(t, "2024-01-03", cmp.LatestDate)

	_, err = f.app.CompareDate(context.Background(), CompareRequest{From: "EUR", To: "USD"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Please select a date", err.Error())
}

func TestCurrenciesAndAllRates(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/currencies": `{"USD":"United States Dollar","EUR":"Euro","GBP":"British Pound"}`,
		"/latest":     `{"amount":1,"base":"EUR","date":"2024-01-03","rates":{"USD":1.1,"GBP":0.86,"XYZ":2}}`,
	})
	ctx := context.Background()

	list, err := f.app.LoadCurrencies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "EUR", list[0].Code)
	assert.Equal(t, "Euro", f.app.CurrencyName("EUR"))
	assert.Equal(t, "XYZ", f.app.CurrencyName("XYZ"))

	rates, err := f.app.AllRates(ctx, "EUR")
	require.NoError(t, err)
	require.Len(t, rates, 3)
	assert.Equal(t, "GBP", rates[0].Code)
	assert.Equal(t, "British Pound", rates[0].Name)
	assert.Equal(t, "XYZ", rates[2].Name)

	_, err = f.app.AllRates(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFavoritesFlow(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/latest": `{"amount":1,"base":"EUR","date":"2024-01-03","rates":{"USD":1.1}}`,
	})
	ctx := context.Background()

	added, err := f.app.AddFavorite(ctx, "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.app.AddFavorite(ctx, "EUR", "USD")
	require.NoError(t, err)
	assert.False(t, added)
	_, err = f.app.AddFavorite(ctx, "EUR", "GBP")
	require.NoError(t, err)

	quotes := f.app.FavoriteQuotes(ctx)
	require.Len(t, quotes, 2)
	assert.NoError(t, quotes[0].Err)
	assert.Equal(t, 1.1, quotes[0].Rate)
	assert.True(t, errors.Is(quotes[1].Err, ErrRateUnavailable))

	require.NoError(t, f.app.RemoveFavorite(ctx, "EUR", "USD"))
	assert.Len(t, f.app.Favorites(), 1)

	_, err = f.app.AddFavorite(ctx, "", "USD")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClearHistoryAndTheme(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/latest": `{"amount":2,"base":"EUR","date":"2024-01-03","rates":{"USD":2.2}}`,
	})
	ctx := context.Background()

	_, err := f.app.Convert(ctx, ConversionRequest{Amount: 2, From: "EUR", To: "USD"})
	require.NoError(t, err)
	require.NoError(t, f.app.ClearHistory(ctx))
	assert.Empty(t, f.app.History())
	_, ok := f.storage.values[ledger.HistoryKey]
	assert.False(t, ok)

	assert.False(t, f.app.DarkMode())
	dark, err := f.app.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, dark)
	require.NoError(t, f.app.SetDarkMode(ctx, false))
	assert.False(t, f.app.DarkMode())
}

func TestLoadRecoversFromCorruptLedgers(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/latest": `{"amount":1,"base":"EUR","date":"2024-01-03","rates":{"USD":1.1}}`,
	})
	ctx := context.Background()
	f.storage.values[ledger.HistoryKey] = `{"broken"`
	f.storage.values[ledger.FavoritesKey] = `[{"from":`
	f.storage.values[ledger.DarkModeKey] = "true"

	err := f.app.Load(ctx)
	require.ErrorIs(t, err, ledger.ErrCorrupt)
	assert.Contains(t, err.Error(), "history")
	assert.Contains(t, err.Error(), "favorites")
	assert.Empty(t, f.app.History())
	assert.Empty(t, f.app.Favorites())
	assert.True(t, f.app.DarkMode())

	require.NoError(t, f.app.ClearHistory(ctx))
	_, err = f.app.Convert(ctx, ConversionRequest{Amount: 1, From: "EUR", To: "USD"})
	require.NoError(t, err)
	require.NoError(t, f.app.Load(ctx))
	assert.Len(t, f.app.History(), 1)
}
