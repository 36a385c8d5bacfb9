// Package app holds the application state shared by the CLI and the dashboard.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/fxdash/internal/frankfurter"
	"github.com/verte-zerg/fxdash/internal/ledger"
	"github.com/verte-zerg/fxdash/internal/model"
	"github.com/verte-zerg/fxdash/internal/stats"
)

// ErrRateUnavailable is returned when the provider response lacks a requested currency.
var ErrRateUnavailable = errors.New("rate unavailable")

// Provider fetches currencies and rates.
type Provider interface {
	Currencies(ctx context.Context) (map[string]string, error)
	Latest(ctx context.Context, amount float64, from string, to []string) (frankfurter.Quote, error)
	OnDate(ctx context.Context, date time.Time, from string, to []string) (frankfurter.Quote, error)
	Range(ctx context.Context, start, end time.Time, from, to string) (map[string]map[string]float64, error)
}

// App owns the ledgers, the currency catalogue and the provider.
type App struct {
	provider  Provider
	favorites *ledger.Favorites
	history   *ledger.History
	theme     *ledger.Theme
	validate  *validator.Validate
	now       func() time.Time

	mu         sync.RWMutex
	currencies []model.Currency
	names      map[string]string
}

// New wires an App. Call Load before use.
func New(provider Provider, storage ledger.Storage) *App {
	return &App{
		provider:  provider,
		favorites: ledger.NewFavorites(storage),
		history:   ledger.NewHistory(storage),
		theme:     ledger.NewTheme(storage),
		validate:  newValidator(),
		now:       time.Now,
		names:     map[string]string{},
	}
}

// Load restores the ledgers and the theme preference from storage. Ledgers holding
// undecodable data start empty; their errors are joined and match ledger.ErrCorrupt.
// Any other error aborts the load.
func (a *App) Load(ctx context.Context) error {
	var corrupt []error
	for _, load := range []func(context.Context) error{a.favorites.Load, a.history.Load, a.theme.Load} {
		err := load(ctx)
		if err == nil {
			continue
		}
		if !errors.Is(err, ledger.ErrCorrupt) {
			return err
		}
		corrupt = append(corrupt, err)
	}
	return errors.Join(corrupt...)
}

// LoadCurrencies fetches the currency catalogue, sorted by code.
func (a *App) LoadCurrencies(ctx context.Context) ([]model.Currency, error) {
	raw, err := a.provider.Currencies(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]model.Currency, 0, len(raw))
	for code, name := range raw {
		list = append(list, model.Currency{Code: code, Name: name})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })

	a.mu.Lock()
	a.currencies = list
	a.names = raw
	a.mu.Unlock()
	return append([]model.Currency(nil), list...), nil
}

// Currencies returns the cached catalogue.
func (a *App) Currencies() []model.Currency {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.Currency(nil), a.currencies...)
}

// CurrencyName returns the display name for code, or code itself when unknown.
func (a *App) CurrencyName(code string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if name, ok := a.names[code]; ok && name != "" {
		return name
	}
	return code
}

// Convert converts an amount and records it in the history.
func (a *App) Convert(ctx context.Context, req ConversionRequest) (model.Conversion, error) {
	if err := a.check(req); err != nil {
		return model.Conversion{}, err
	}
	quote, err := a.provider.Latest(ctx, req.Amount, req.From, []string{req.To})
	if err != nil {
		return model.Conversion{}, err
	}
	result, ok := quote.Rates[req.To]
	if !ok {
		return model.Conversion{}, fmt.Errorf("%w: %s to %s", ErrRateUnavailable, req.From, req.To)
	}
	conv := model.Conversion{
		From:   req.From,
		To:     req.To,
		Amount: req.Amount,
		Result: result,
		Rate:   result / req.Amount,
		Date:   quote.Date,
	}
	if err := a.record(ctx, conv); err != nil {
		return conv, err
	}
	return conv, nil
}

// ConvertMulti converts an amount into several currencies with one request.
// Currencies missing from the response are skipped. Results are sorted by code.
func (a *App) ConvertMulti(ctx context.Context, req MultiConversionRequest) ([]model.Conversion, error) {
	if err := a.check(req); err != nil {
		return nil, err
	}
	quote, err := a.provider.Latest(ctx, req.Amount, req.From, req.To)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(quote.Rates))
	for code := range quote.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]model.Conversion, 0, len(codes))
	for _, code := range codes {
		result := quote.Rates[code]
		conv := model.Conversion{
			From:   req.From,
			To:     code,
			Amount: req.Amount,
			Result: result,
			Rate:   result / req.Amount,
			Date:   quote.Date,
		}
		out = append(out, conv)
		if err := a.record(ctx, conv); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (a *App) record(ctx context.Context, conv model.Conversion) error {
	_, err := a.history.Record(ctx, model.HistoryEntry{
		From:   conv.From,
		To:     conv.To,
		Amount: conv.Amount,
		Result: conv.Result,
		Rate:   conv.Rate,
	})
	if err != nil {
		return fmt.Errorf("failed to record conversion: %w", err)
	}
	return nil
}

// Trend fetches and analyzes the daily rate series of a pair.
func (a *App) Trend(ctx context.Context, req TrendRequest) (model.Trend, error) {
	if err := a.check(req); err != nil {
		return model.Trend{}, err
	}
	raw, err := a.provider.Range(ctx, req.Start, req.End, req.From, req.To)
	if err != nil {
		return model.Trend{}, err
	}
	analysis, err := stats.Analyze(raw, req.To)
	if err != nil {
		return model.Trend{}, err
	}
	return model.Trend{
		From:     req.From,
		To:       req.To,
		Start:    req.Start,
		End:      req.End,
		Analysis: analysis,
	}, nil
}

// LastDays returns the date range covering the given number of days up to today (UTC).
func (a *App) LastDays(days int) (time.Time, time.Time) {
	now := a.now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if days < 1 {
		days = 1
	}
	return end.AddDate(0, 0, -days), end
}

// CompareDate compares the rate published on a date with the latest rate.
func (a *App) CompareDate(ctx context.Context, req CompareRequest) (model.DateComparison, error) {
	if err := a.check(req); err != nil {
		return model.DateComparison{}, err
	}
	past, err := a.provider.OnDate(ctx, req.Date, req.From, []string{req.To})
	if err != nil {
		return model.DateComparison{}, err
	}
	latest, err := a.provider.Latest(ctx, 0, req.From, []string{req.To})
	if err != nil {
		return model.DateComparison{}, err
	}
	pastRate, ok := past.Rates[req.To]
	if !ok {
		return model.DateComparison{}, fmt.Errorf("%w: %s to %s on %s", ErrRateUnavailable, req.From, req.To, req.Date.Format(model.DateLayout))
	}
	latestRate, ok := latest.Rates[req.To]
	if !ok {
		return model.DateComparison{}, fmt.Errorf("%w: %s to %s", ErrRateUnavailable, req.From, req.To)
	}
	return model.DateComparison{
		From:          req.From,
		To:            req.To,
		Date:          req.Date,
		RateOnDate:    pastRate,
		LatestRate:    latestRate,
		LatestDate:    latest.Date,
		DifferencePct: (latestRate - pastRate) / pastRate * 100,
	}, nil
}

// AllRates returns the latest rate of every currency against base, sorted by code.
func (a *App) AllRates(ctx context.Context, base string) ([]model.QuotedRate, error) {
	if err := a.validate.Var(base, "required"); err != nil {
		return nil, &ValidationError{Field: "Base", Message: "Please select a base currency"}
	}
	quote, err := a.provider.Latest(ctx, 0, base, nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.QuotedRate, 0, len(quote.Rates))
	for code, rate := range quote.Rates {
		out = append(out, model.QuotedRate{Code: code, Name: a.CurrencyName(code), Rate: rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// AddFavorite bookmarks a pair. It reports false when the pair is already a favorite.
func (a *App) AddFavorite(ctx context.Context, from, to string) (bool, error) {
	if err := a.check(PairRequest{From: from, To: to}); err != nil {
		return false, err
	}
	return a.favorites.Add(ctx, from, to)
}

// RemoveFavorite drops a bookmarked pair.
func (a *App) RemoveFavorite(ctx context.Context, from, to string) error {
	return a.favorites.Remove(ctx, from, to)
}

// Favorites returns the bookmarked pairs in insertion order.
func (a *App) Favorites() []model.FavoritePair {
	return a.favorites.List()
}

// FavoriteQuotes fetches the live rate of every favorite. A failed fetch is reported on its row.
func (a *App) FavoriteQuotes(ctx context.Context) []model.FavoriteQuote {
	pairs := a.favorites.List()
	out := make([]model.FavoriteQuote, 0, len(pairs))
	for _, p := range pairs {
		fq := model.FavoriteQuote{Pair: p}
		quote, err := a.provider.Latest(ctx, 0, p.From, []string{p.To})
		switch {
		case err != nil:
			fq.Err = err
		default:
			rate, ok := quote.Rates[p.To]
			if !ok {
				fq.Err = fmt.Errorf("%w: %s to %s", ErrRateUnavailable, p.From, p.To)
			}
			fq.Rate = rate
		}
		out = append(out, fq)
	}
	return out
}

// History returns the recorded conversions, newest first.
func (a *App) History() []model.HistoryEntry {
	return a.history.List()
}

// ClearHistory deletes every recorded conversion.
func (a *App) ClearHistory(ctx context.Context) error {
	return a.history.Clear(ctx)
}

// DarkMode reports the theme preference.
func (a *App) DarkMode() bool {
	return a.theme.Dark()
}

// SetDarkMode persists the theme preference.
func (a *App) SetDarkMode(ctx context.Context, dark bool) error {
	return a.theme.SetDark(ctx, dark)
}

// ToggleDarkMode flips the theme preference.
func (a *App) ToggleDarkMode(ctx context.Context) (bool, error) {
	return a.theme.Toggle(ctx)
}
