// Package stats contains rate series analytics and text reporting.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/fxdash/internal/model"
)

// ErrEmptySeries is returned when a series has no usable points.
var ErrEmptySeries = errors.New("rate series is empty")

// BuildSeries decodes a provider time series into points for the target currency.
// Dates missing the target currency are skipped. Points are sorted ascending by date.
func BuildSeries(raw map[string]map[string]float64, target string) ([]model.RatePoint, error) {
	series := make([]model.RatePoint, 0, len(raw))
	for key, rates := range raw {
		rate, ok := rates[target]
		if !ok {
			continue
		}
		date, err := time.Parse(model.DateLayout, key)
		if err != nil {
			return nil, fmt.Errorf("invalid series date %q: %w", key, err)
		}
		series = append(series, model.RatePoint{Date: date, Rate: rate})
	}
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series, nil
}

// ChangePoints computes the day-over-day percentage change for every point.
// The first point has no reference and reports 0.
func ChangePoints(series []model.RatePoint) []model.ChangePoint {
	out := make([]model.ChangePoint, len(series))
	for i, p := range series {
		out[i] = model.ChangePoint{Date: p.Date, Rate: p.Rate}
		if i > 0 {
			prev := series[i-1].Rate
			out[i].ChangePct = (p.Rate - prev) / prev * 100
		}
	}
	return out
}

// Summarize derives net change, extrema and the largest single-step fluctuation.
// Ties resolve to the earliest point.
func Summarize(series []model.RatePoint) (model.SeriesSummary, error) {
	if len(series) == 0 {
		return model.SeriesSummary{}, ErrEmptySeries
	}
	first := series[0]
	last := series[len(series)-1]
	summary := model.SeriesSummary{
		NetChangePct: (last.Rate - first.Rate) / first.Rate * 100,
		Highest:      first,
		Lowest:       first,
	}
	maxDelta := 0.0
	for i, p := range series {
		if p.Rate > summary.Highest.Rate {
			summary.Highest = p
		}
		if p.Rate < summary.Lowest.Rate {
			summary.Lowest = p
		}
		if i == 0 {
			continue
		}
		delta := math.Abs(p.Rate - series[i-1].Rate)
		if delta > maxDelta {
			maxDelta = delta
			summary.MaxFluctuation = &model.Fluctuation{Point: p, Delta: delta}
		}
	}
	return summary, nil
}

// Analyze builds the series for target and derives its change points and summary.
func Analyze(raw map[string]map[string]float64, target string) (model.Analysis, error) {
	series, err := BuildSeries(raw, target)
	if err != nil {
		return model.Analysis{}, err
	}
	summary, err := Summarize(series)
	if err != nil {
		return model.Analysis{}, err
	}
	return model.Analysis{
		Series:  series,
		Changes: ChangePoints(series),
		Summary: summary,
	}, nil
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Rates extracts the rate values of a series.
func Rates(series []model.RatePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Rate
	}
	return out
}
