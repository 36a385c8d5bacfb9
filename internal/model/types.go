// Package model defines shared data structures.
package model

import "time"

// DateLayout is the calendar date format used by the rate provider.
const DateLayout = "2006-01-02"

// Currency is a provider currency code with its display name.
type Currency struct {
	Code string
	Name string
}

// RatePoint is one (date, exchange rate) sample.
type RatePoint struct {
	Date time.Time
	Rate float64
}

// ChangePoint is a rate sample with its day-over-day percentage change.
type ChangePoint struct {
	Date      time.Time
	Rate      float64
	ChangePct float64
}

// Fluctuation is the largest absolute day-over-day delta of a series.
type Fluctuation struct {
	Point RatePoint
	Delta float64
}

// SeriesSummary holds derived statistics of a rate series.
type SeriesSummary struct {
	NetChangePct float64
	Highest      RatePoint
	Lowest       RatePoint
	// MaxFluctuation is nil when no step moved the rate.
	MaxFluctuation *Fluctuation
}

// Analysis bundles a decoded series with its derived statistics.
type Analysis struct {
	Series  []RatePoint
	Changes []ChangePoint
	Summary SeriesSummary
}

// Trend is an analysis for one currency pair over a date range.
type Trend struct {
	From  string
	To    string
	Start time.Time
	End   time.Time
	Analysis
}

// FavoritePair is a bookmarked currency pair.
type FavoritePair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FavoriteQuote is a favorite pair with its live rate. Err is set when the rate could not be fetched.
type FavoriteQuote struct {
	Pair FavoritePair
	Rate float64
	Err  error
}

// HistoryEntry is one completed conversion.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    float64   `json:"amount"`
	Result    float64   `json:"result"`
	Rate      float64   `json:"rate"`
}

// Conversion is the outcome of converting an amount between two currencies.
type Conversion struct {
	From   string
	To     string
	Amount float64
	Result float64
	Rate   float64
	Date   string
}

// DateComparison compares the rate on a given date with the latest rate.
type DateComparison struct {
	From          string
	To            string
	Date          time.Time
	RateOnDate    float64
	LatestRate    float64
	LatestDate    string
	DifferencePct float64
}

// QuotedRate is a rate against a base currency.
type QuotedRate struct {
	Code string
	Name string
	Rate float64
}
