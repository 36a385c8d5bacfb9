package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/verte-zerg/fxdash/internal/model"
)

// NameFunc resolves a currency code to its display name.
type NameFunc func(code string) string

// FormatChange renders a percentage change with a direction arrow.
func FormatChange(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("%.2f%% ▲", pct)
	}
	return fmt.Sprintf("%.2f%% ▼", pct)
}

// FormatRate renders an exchange rate with six decimals.
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.6f", rate)
}

// FormatAmount renders a monetary amount with two decimals.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// RenderTrend prints the summary, chart and per-day table of a trend.
// When smooth > 1 a moving average is drawn next to the rate.
func RenderTrend(w io.Writer, trend model.Trend, smooth, width int, useColor bool) error {
	if err := RenderSummary(w, trend.From, trend.To, trend.Summary); err != nil {
		return err
	}
	rates := Rates(trend.Series)
	series := []Series{{Name: "Rate", Values: rates}}
	if smooth > 1 {
		series = append(series, Series{Name: fmt.Sprintf("%d-day avg", smooth), Values: MovingAverage(rates, smooth)})
	}
	title := fmt.Sprintf("%s to %s, %s .. %s", trend.From, trend.To, trend.Start.Format(model.DateLayout), trend.End.Format(model.DateLayout))
	plotWidth := 0
	if width > 0 {
		plotWidth = PlotWidthFor(width)
	}
	if err := PlotSeriesWithColor(w, title, series, plotWidth, defaultPlotHeight, useColor); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return RenderChangeTable(w, trend.Changes, trend.Summary.MaxFluctuation)
}

// RenderSummary prints the derived statistics of a series.
func RenderSummary(w io.Writer, from, to string, sum model.SeriesSummary) error {
	fluctDay := "-"
	fluctDelta := 0.0
	if sum.MaxFluctuation != nil {
		fluctDay = sum.MaxFluctuation.Point.Date.Format(model.DateLayout)
		fluctDelta = sum.MaxFluctuation.Delta
	}
	lines := FormatTable(nil, [][]string{
		{"Change", FormatChange(sum.NetChangePct), fmt.Sprintf("%s to %s", from, to)},
		{"Highest", FormatRate(sum.Highest.Rate), "on " + sum.Highest.Date.Format(model.DateLayout)},
		{"Lowest", FormatRate(sum.Lowest.Rate), "on " + sum.Lowest.Date.Format(model.DateLayout)},
		{"Biggest move", fluctDay, fmt.Sprintf("%s %s", FormatRate(fluctDelta), to)},
	}, map[int]bool{1: true})
	return writeLines(w, lines)
}

// RenderChangeTable prints one row per day; the fluctuation day is marked with '*'.
func RenderChangeTable(w io.Writer, changes []model.ChangePoint, fluct *model.Fluctuation) error {
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		mark := ""
		if fluct != nil && c.Date.Equal(fluct.Point.Date) {
			mark = "*"
		}
		rows = append(rows, []string{mark, c.Date.Format(model.DateLayout), FormatRate(c.Rate), FormatChange(c.ChangePct)})
	}
	return writeLines(w, FormatTable([]string{"", "Date", "Rate", "Change"}, rows, NumericColumns(rows)))
}

// RenderConversions prints converted amounts with their rates.
func RenderConversions(w io.Writer, conversions []model.Conversion, names NameFunc) error {
	if len(conversions) == 0 {
		_, err := fmt.Fprintln(w, "No conversions.")
		return err
	}
	if len(conversions) == 1 {
		c := conversions[0]
		if _, err := fmt.Fprintf(w, "%s %s = %s %s\n", FormatAmount(c.Amount), c.From, FormatAmount(c.Result), c.To); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Rate: 1 %s = %s %s\n", c.From, FormatRate(c.Rate), c.To)
		return err
	}
	rows := make([][]string, 0, len(conversions))
	for _, c := range conversions {
		rows = append(rows, []string{currencyLabel(c.To, names), FormatRate(c.Rate), FormatAmount(c.Result)})
	}
	return writeLines(w, FormatTable([]string{"Currency", "Rate", "Amount"}, rows, NumericColumns(rows)))
}

// RenderHistory prints conversion history entries in the given order.
func RenderHistory(w io.Writer, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No conversion history.")
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.From,
			e.To,
			FormatAmount(e.Amount),
			FormatAmount(e.Result),
			FormatRate(e.Rate),
		})
	}
	return writeLines(w, FormatTable([]string{"Time", "From", "To", "Amount", "Result", "Rate"}, rows, NumericColumns(rows)))
}

// RenderFavorites prints favorite pairs with their live rates.
func RenderFavorites(w io.Writer, quotes []model.FavoriteQuote, names NameFunc) error {
	if len(quotes) == 0 {
		_, err := fmt.Fprintln(w, "No favorites yet. Add one with: fxdash fav add FROM TO")
		return err
	}
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rate := "n/a"
		if q.Err == nil {
			rate = FormatRate(q.Rate)
		}
		rows = append(rows, []string{currencyLabel(q.Pair.From, names), currencyLabel(q.Pair.To, names), rate})
	}
	return writeLines(w, FormatTable([]string{"From", "To", "Rate"}, rows, NumericColumns(rows)))
}

// RenderRates prints rates against a base currency.
func RenderRates(w io.Writer, base string, rates []model.QuotedRate) error {
	if _, err := fmt.Fprintf(w, "Rates for 1 %s\n", base); err != nil {
		return err
	}
	rows := make([][]string, 0, len(rates))
	for _, r := range rates {
		label := r.Code
		if r.Name != "" && r.Name != r.Code {
			label = r.Code + " - " + r.Name
		}
		rows = append(rows, []string{label, FormatRate(r.Rate)})
	}
	return writeLines(w, FormatTable([]string{"Currency", "Rate"}, rows, NumericColumns(rows)))
}

// RenderCurrencies prints the currency catalogue.
func RenderCurrencies(w io.Writer, currencies []model.Currency) error {
	rows := make([][]string, 0, len(currencies))
	for _, c := range currencies {
		rows = append(rows, []string{c.Code, c.Name})
	}
	return writeLines(w, FormatTable([]string{"Code", "Name"}, rows, nil))
}

// RenderComparison prints the rate on a date next to the latest rate.
func RenderComparison(w io.Writer, cmp model.DateComparison) error {
	direction := "higher"
	if cmp.DifferencePct < 0 {
		direction = "lower"
	}
	lines := []string{
		fmt.Sprintf("Rate on %s:  1 %s = %s %s", cmp.Date.Format(model.DateLayout), cmp.From, FormatRate(cmp.RateOnDate), cmp.To),
		fmt.Sprintf("Latest (%s): 1 %s = %s %s", cmp.LatestDate, cmp.From, FormatRate(cmp.LatestRate), cmp.To),
		fmt.Sprintf("%.2f%% %s than selected date", math.Abs(cmp.DifferencePct), direction),
	}
	return writeLines(w, lines)
}

func currencyLabel(code string, names NameFunc) string {
	if names == nil {
		return code
	}
	name := names(code)
	if name == "" || name == code {
		return code
	}
	return code + " - " + name
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
